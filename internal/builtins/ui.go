package builtins

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/sunholo/aivi/internal/effects"
	"github.com/sunholo/aivi/internal/eval"
)

// ui: renderHtml/diff/patchToJson/eventFromJson/live (spec §4.10, §6).
// A VNode is a Constructor{"VNode", "Element"|"TextNode"|"Keyed", ...};
// a Patch is a Constructor{"Patch", "Replace"|"SetText"|"SetAttr"|
// "RemoveAttr", ...}. Grounded on the original compiler's own render/diff pass
// (internal/eval show/debug traversal) generalized to a tree diff, with
// the live wiring served by a stdlib net/http mux plus coder/websocket.
func uiNamespace(interp *eval.Interp, ctx *effects.EffContext) *namespace {
	n := newNamespace()
	n.add("renderHtml", 1, uiRenderHtml)
	n.add("diff", 2, uiDiff)
	n.add("patchToJson", 1, uiPatchToJSON)
	n.add("eventFromJson", 1, uiEventFromJSON)
	n.add("live", 3, uiLive(interp, ctx))
	return n
}

func vnodeCtor(fname string, v eval.Value) (*eval.Constructor, error) {
	c, ok := v.(*eval.Constructor)
	if !ok || c.TypeName != "VNode" {
		return nil, argError(fname, "VNode", v)
	}
	return c, nil
}

func uiRenderHtml(args []eval.Value) (eval.Value, error) {
	c, err := vnodeCtor("renderHtml", args[0])
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	renderNode(&b, c)
	return eval.Text{Value: b.String()}, nil
}

func renderNode(b *strings.Builder, node *eval.Constructor) {
	switch node.Name {
	case "TextNode":
		text, _ := node.Args[0].(eval.Text)
		b.WriteString(html.EscapeString(text.Value))
	case "Keyed":
		// Args: [key, node]
		if len(node.Args) == 2 {
			if child, ok := node.Args[1].(*eval.Constructor); ok {
				renderNode(b, child)
			}
		}
	case "Element":
		tag, _ := node.Args[0].(eval.Text)
		attrs, _ := node.Args[1].(*eval.Record)
		children, _ := node.Args[2].(*eval.List)
		b.WriteString("<")
		b.WriteString(tag.Value)
		if attrs != nil {
			for _, name := range attrs.Order {
				v, _ := attrs.Fields[name].(eval.Text)
				fmt.Fprintf(b, ` %s="%s"`, name, html.EscapeString(v.Value))
			}
		}
		b.WriteString(">")
		if children != nil {
			for _, item := range children.Items {
				if child, ok := item.(*eval.Constructor); ok {
					renderNode(b, child)
				}
			}
		}
		b.WriteString("</")
		b.WriteString(tag.Value)
		b.WriteString(">")
	}
}

// uiDiff computes a minimal patch list between old and new VNode trees,
// walking both trees in lockstep and addressing nodes by their path from
// the root ("0/1/2" — child index joined by /).
func uiDiff(args []eval.Value) (eval.Value, error) {
	oldNode, err := vnodeCtor("diff", args[0])
	if err != nil {
		return nil, err
	}
	newNode, err := vnodeCtor("diff", args[1])
	if err != nil {
		return nil, err
	}
	var patches []eval.Value
	diffNode("0", oldNode, newNode, &patches)
	return &eval.List{Items: patches}, nil
}

func patchCtor(name string, args ...eval.Value) eval.Value {
	return &eval.Constructor{TypeName: "Patch", Name: name, Args: args}
}

func renderHTMLOf(node *eval.Constructor) string {
	var b strings.Builder
	renderNode(&b, node)
	return b.String()
}

func diffNode(path string, oldN, newN *eval.Constructor, patches *[]eval.Value) {
	if oldN.Name != newN.Name {
		*patches = append(*patches, patchCtor("Replace", eval.Text{Value: path}, eval.Text{Value: renderHTMLOf(newN)}))
		return
	}
	switch newN.Name {
	case "TextNode":
		oldText, _ := oldN.Args[0].(eval.Text)
		newText, _ := newN.Args[0].(eval.Text)
		if oldText.Value != newText.Value {
			*patches = append(*patches, patchCtor("SetText", eval.Text{Value: path}, newText))
		}
	case "Keyed":
		oldKey, _ := oldN.Args[0].(eval.Text)
		newKey, _ := newN.Args[0].(eval.Text)
		if oldKey.Value != newKey.Value {
			*patches = append(*patches, patchCtor("Replace", eval.Text{Value: path}, eval.Text{Value: renderHTMLOf(newN)}))
			return
		}
		oldChild, _ := oldN.Args[1].(*eval.Constructor)
		newChild, _ := newN.Args[1].(*eval.Constructor)
		diffNode(path, oldChild, newChild, patches)
	case "Element":
		oldTag, _ := oldN.Args[0].(eval.Text)
		newTag, _ := newN.Args[0].(eval.Text)
		if oldTag.Value != newTag.Value {
			*patches = append(*patches, patchCtor("Replace", eval.Text{Value: path}, eval.Text{Value: renderHTMLOf(newN)}))
			return
		}
		diffAttrs(path, oldN.Args[1], newN.Args[1], patches)
		diffChildren(path, oldN.Args[2], newN.Args[2], patches)
	}
}

func diffAttrs(path string, oldV, newV eval.Value, patches *[]eval.Value) {
	oldAttrs, _ := oldV.(*eval.Record)
	newAttrs, _ := newV.(*eval.Record)
	if oldAttrs == nil {
		oldAttrs = eval.NewRecord()
	}
	if newAttrs == nil {
		newAttrs = eval.NewRecord()
	}
	for _, name := range newAttrs.Order {
		nv := newAttrs.Fields[name]
		if ov, present := oldAttrs.Fields[name]; !present || !eval.Equal(ov, nv) {
			*patches = append(*patches, patchCtor("SetAttr", eval.Text{Value: path}, eval.Text{Value: name}, nv))
		}
	}
	for _, name := range oldAttrs.Order {
		if _, present := newAttrs.Fields[name]; !present {
			*patches = append(*patches, patchCtor("RemoveAttr", eval.Text{Value: path}, eval.Text{Value: name}))
		}
	}
}

func diffChildren(path string, oldV, newV eval.Value, patches *[]eval.Value) {
	oldList, _ := oldV.(*eval.List)
	newList, _ := newV.(*eval.List)
	var oldItems, newItems []eval.Value
	if oldList != nil {
		oldItems = oldList.Items
	}
	if newList != nil {
		newItems = newList.Items
	}
	max := len(oldItems)
	if len(newItems) > max {
		max = len(newItems)
	}
	for i := 0; i < max; i++ {
		childPath := fmt.Sprintf("%s/%d", path, i)
		switch {
		case i >= len(oldItems):
			if nc, ok := newItems[i].(*eval.Constructor); ok {
				*patches = append(*patches, patchCtor("Replace", eval.Text{Value: childPath}, eval.Text{Value: renderHTMLOf(nc)}))
			}
		case i >= len(newItems):
			*patches = append(*patches, patchCtor("Replace", eval.Text{Value: childPath}, eval.Text{Value: ""}))
		default:
			oc, _ := oldItems[i].(*eval.Constructor)
			nc, _ := newItems[i].(*eval.Constructor)
			if oc != nil && nc != nil {
				diffNode(childPath, oc, nc, patches)
			}
		}
	}
}

type wirePatch struct {
	Op    string `json:"op"`
	ID    string `json:"id"`
	HTML  string `json:"html,omitempty"`
	Text  string `json:"text,omitempty"`
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

func patchToWire(v eval.Value) (wirePatch, error) {
	c, ok := v.(*eval.Constructor)
	if !ok || c.TypeName != "Patch" {
		return wirePatch{}, argError("patchToJson", "Patch", v)
	}
	id, _ := c.Args[0].(eval.Text)
	w := wirePatch{Op: c.Name, ID: id.Value}
	switch c.Name {
	case "Replace":
		htmlVal, _ := c.Args[1].(eval.Text)
		w.HTML = htmlVal.Value
	case "SetText":
		t, _ := c.Args[1].(eval.Text)
		w.Text = t.Value
	case "SetAttr":
		name, _ := c.Args[1].(eval.Text)
		value, _ := c.Args[2].(eval.Text)
		w.Name, w.Value = name.Value, value.Value
	case "RemoveAttr":
		name, _ := c.Args[1].(eval.Text)
		w.Name = name.Value
	}
	return w, nil
}

func uiPatchToJSON(args []eval.Value) (eval.Value, error) {
	list, err := wantList("patchToJson", args[0])
	if err != nil {
		return nil, err
	}
	wires := make([]wirePatch, 0, len(list.Items))
	for _, item := range list.Items {
		w, err := patchToWire(item)
		if err != nil {
			return nil, err
		}
		wires = append(wires, w)
	}
	out, err := json.Marshal(wires)
	if err != nil {
		return nil, err
	}
	return eval.Text{Value: string(out)}, nil
}

// uiEventFromJson decodes `{ t: "click"|"input", id: Int, value?: Text }`
// into a record value with fields t/id/value (value defaults to "").
func uiEventFromJSON(args []eval.Value) (eval.Value, error) {
	text, err := wantText("eventFromJson", args[0])
	if err != nil {
		return nil, err
	}
	var raw struct {
		T     string `json:"t"`
		ID    int64  `json:"id"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return errV(eval.Text{Value: err.Error()}), nil
	}
	rec := eval.NewRecord().
		With("t", eval.Text{Value: raw.T}).
		With("id", eval.Int{Value: raw.ID}).
		With("value", eval.Text{Value: raw.Value})
	return ok(rec), nil
}

// uiLive serves the initial HTML render of a root VNode at the given
// address and streams subsequent diffs over a WebSocket as each
// iteration's Effect yields the next tree (spec §4.10, §6 "live").
// args: (addr Text, initial VNode, next: Effect VNode), where next is run
// again for every frame sent over the socket.
func uiLive(interp *eval.Interp, ctx *effects.EffContext) func([]eval.Value) (eval.Value, error) {
	return func(args []eval.Value) (eval.Value, error) {
		if err := ctx.RequireCap("Net"); err != nil {
			return nil, err
		}
		addr, err := wantText("live", args[0])
		if err != nil {
			return nil, err
		}
		root, err := vnodeCtor("live", args[1])
		if err != nil {
			return nil, err
		}
		nextFn := args[2]

		mux := http.NewServeMux()
		var mu sync.Mutex
		current := root

		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			body := renderHTMLOf(current)
			mu.Unlock()
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprintf(w, "<!doctype html><html><body>%s</body></html>", body)
		})

		mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			conn, err := websocket.Accept(w, r, nil)
			if err != nil {
				return
			}
			defer conn.Close(websocket.StatusNormalClosure, "")
			for {
				eff, ok := nextFn.(*eval.Effect)
				if !ok {
					break
				}
				next, err := interp.RunEffect(eff, eval.NewCancel())
				if err != nil {
					return
				}
				nextNode, ok := next.(*eval.Constructor)
				if !ok {
					return
				}
				mu.Lock()
				var patches []eval.Value
				diffNode("0", current, nextNode, &patches)
				current = nextNode
				mu.Unlock()
				wires := make([]wirePatch, 0, len(patches))
				for _, p := range patches {
					w, _ := patchToWire(p)
					wires = append(wires, w)
				}
				if err := wsjson.Write(r.Context(), conn, wires); err != nil {
					return
				}
			}
		})

		srv := &http.Server{Addr: addr, Handler: mux}
		go srv.ListenAndServe()
		return &eval.Handle{Kind: "Server", Impl: srv}, nil
	}
}
