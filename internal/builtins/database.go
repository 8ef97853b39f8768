package builtins

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	puresqlite "github.com/glebarez/sqlite"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sunholo/aivi/internal/eval"
)

// database: table/load/applyDelta/runMigrations (spec §6 `database`).
// A table is a Handle{Kind:"Table"} wrapping its name, declared schema,
// and a dynamically built reflect.StructOf model so gorm.AutoMigrate can
// create/alter the underlying SQLite table (Open Question resolved:
// runMigrations is a structural AutoMigrate over every registered
// table, per SPEC_FULL.md). load/applyDelta compile their predicates
// through goqu before gorm executes the resulting SQL, exactly as the
// DOMAIN STACK table describes.
type tableDef struct {
	name    string
	columns []string // declared order
	kinds   map[string]string
	model   reflect.Type
	db      *gorm.DB
}

var dbConns = map[string]*gorm.DB{}

// openDB opens (or reuses) the gorm connection for path. A ":memory:"
// path uses glebarez/sqlite, a cgo-free driver, since scratch/test tables
// never need the cgo mattn driver gormsqlite pulls in; any on-disk path
// uses gormsqlite for its wider SQLite feature coverage.
func openDB(path string) (*gorm.DB, error) {
	if db, ok := dbConns[path]; ok {
		return db, nil
	}
	var dialector gorm.Dialector
	if path == ":memory:" || strings.HasPrefix(path, "memory:") {
		dialector = puresqlite.Open(path)
	} else {
		dialector = gormsqlite.Open(path)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	dbConns[path] = db
	return db, nil
}

func databaseNamespace() *namespace {
	n := newNamespace()
	n.add("table", 3, databaseTable)
	n.add("load", 2, databaseLoad)
	n.add("applyDelta", 2, databaseApplyDelta)
	n.add("runMigrations", 1, databaseRunMigrations)
	return n
}

// databaseTable(dbPath, name, schema) where schema is a Record mapping
// column name -> kind tag Text ∈ {"int","float","text","bool"}.
func databaseTable(args []eval.Value) (eval.Value, error) {
	path, err := wantText("table", args[0])
	if err != nil {
		return nil, err
	}
	name, err := wantText("table", args[1])
	if err != nil {
		return nil, err
	}
	schema, err := wantRecord("table", args[2])
	if err != nil {
		return nil, err
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	kinds := map[string]string{}
	fields := []reflect.StructField{{
		Name: "ID",
		Type: reflect.TypeOf(int64(0)),
		Tag:  reflect.StructTag(`gorm:"primaryKey"`),
	}}
	for _, col := range schema.Order {
		kindVal, _ := schema.Fields[col].(eval.Text)
		kinds[col] = kindVal.Value
		fields = append(fields, reflect.StructField{
			Name: exportName(col),
			Type: goTypeFor(kindVal.Value),
			Tag:  reflect.StructTag(fmt.Sprintf(`gorm:"column:%s"`, col)),
		})
	}
	model := reflect.StructOf(fields)

	return &eval.Handle{Kind: "Table", Impl: &tableDef{
		name:    name,
		columns: append([]string{}, schema.Order...),
		kinds:   kinds,
		model:   model,
		db:      db,
	}}, nil
}

func exportName(col string) string {
	if col == "" {
		return col
	}
	return strings.ToUpper(col[:1]) + col[1:]
}

func goTypeFor(kind string) reflect.Type {
	switch kind {
	case "int":
		return reflect.TypeOf(int64(0))
	case "float":
		return reflect.TypeOf(float64(0))
	case "bool":
		return reflect.TypeOf(false)
	default:
		return reflect.TypeOf("")
	}
}

func tableFromHandle(fname string, v eval.Value) (*tableDef, error) {
	h, ok := v.(*eval.Handle)
	if !ok || h.Kind != "Table" {
		return nil, argError(fname, "Table Handle", v)
	}
	return h.Impl.(*tableDef), nil
}

func databaseRunMigrations(args []eval.Value) (eval.Value, error) {
	list, err := wantList("runMigrations", args[0])
	if err != nil {
		return nil, err
	}
	for _, item := range list.Items {
		t, err := tableFromHandle("runMigrations", item)
		if err != nil {
			return nil, err
		}
		modelPtr := reflect.New(t.model).Interface()
		if err := t.db.Table(t.name).AutoMigrate(modelPtr); err != nil {
			return errV(eval.Text{Value: err.Error()}), nil
		}
	}
	return ok(eval.Unit{}), nil
}

// predToExpr turns a predicate Record (column -> expected Value) into a
// goqu.Ex for both load's WHERE clause and applyDelta's Update/Delete.
func predToExpr(pred *eval.Record) goqu.Ex {
	ex := goqu.Ex{}
	for _, col := range pred.Order {
		ex[col] = goValue(pred.Fields[col])
	}
	return ex
}

func goValue(v eval.Value) any {
	switch n := v.(type) {
	case eval.Int:
		return n.Value
	case eval.Float:
		return n.Value
	case eval.Bool:
		return n.Value
	case eval.Text:
		return n.Value
	default:
		return nil
	}
}

func databaseLoad(args []eval.Value) (eval.Value, error) {
	t, err := tableFromHandle("load", args[0])
	if err != nil {
		return nil, err
	}
	pred, err := wantRecord("load", args[1])
	if err != nil {
		return nil, err
	}
	sql, params, err := goqu.Dialect("sqlite3").From(t.name).Where(predToExpr(pred)).ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := t.db.Raw(sql, params...).Rows()
	if err != nil {
		return errV(eval.Text{Value: err.Error()}), nil
	}
	defer rows.Close()

	cols, _ := rows.Columns()
	var out []eval.Value
	for rows.Next() {
		scanDest := make([]any, len(cols))
		scanPtrs := make([]any, len(cols))
		for i := range scanDest {
			scanPtrs[i] = &scanDest[i]
		}
		if err := rows.Scan(scanPtrs...); err != nil {
			return errV(eval.Text{Value: err.Error()}), nil
		}
		rec := eval.NewRecord()
		for i, col := range cols {
			rec = rec.With(col, sqlToValue(scanDest[i]))
		}
		out = append(out, rec)
	}
	return ok(&eval.List{Items: out}), nil
}

func sqlToValue(v any) eval.Value {
	switch n := v.(type) {
	case int64:
		return eval.Int{Value: n}
	case float64:
		return eval.Float{Value: n}
	case bool:
		return eval.Bool{Value: n}
	case string:
		return eval.Text{Value: n}
	case []byte:
		return eval.Text{Value: string(n)}
	default:
		return eval.Unit{}
	}
}

// databaseApplyDelta(table, delta) where delta is a Constructor "Delta"
// tagged Insert(Record) | Update(Record pred, Record patch) | Delete(Record pred).
func databaseApplyDelta(args []eval.Value) (eval.Value, error) {
	t, err := tableFromHandle("applyDelta", args[0])
	if err != nil {
		return nil, err
	}
	delta, ok2 := args[1].(*eval.Constructor)
	if !ok2 || delta.TypeName != "Delta" {
		return nil, argError("applyDelta", "Delta", args[1])
	}

	dialect := goqu.Dialect("sqlite3")
	var sql string
	var params []any
	var err2 error

	switch delta.Name {
	case "Insert":
		row, rerr := wantRecord("applyDelta", delta.Args[0])
		if rerr != nil {
			return nil, rerr
		}
		rec := goqu.Record{}
		for _, col := range row.Order {
			rec[col] = goValue(row.Fields[col])
		}
		sql, params, err2 = dialect.Insert(t.name).Rows(rec).ToSQL()
	case "Update":
		pred, perr := wantRecord("applyDelta", delta.Args[0])
		if perr != nil {
			return nil, perr
		}
		patch, perr := wantRecord("applyDelta", delta.Args[1])
		if perr != nil {
			return nil, perr
		}
		rec := goqu.Record{}
		for _, col := range patch.Order {
			rec[col] = goValue(patch.Fields[col])
		}
		sql, params, err2 = dialect.Update(t.name).Set(rec).Where(predToExpr(pred)).ToSQL()
	case "Delete":
		pred, perr := wantRecord("applyDelta", delta.Args[0])
		if perr != nil {
			return nil, perr
		}
		sql, params, err2 = dialect.Delete(t.name).Where(predToExpr(pred)).ToSQL()
	default:
		return nil, argError("applyDelta", "Insert|Update|Delete", delta)
	}
	if err2 != nil {
		return nil, err2
	}
	if err := t.db.Exec(sql, params...).Error; err != nil {
		return errV(eval.Text{Value: err.Error()}), nil
	}
	return ok(eval.Unit{}), nil
}
