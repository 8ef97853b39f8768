package builtins

import (
	"container/heap"
	"math"

	"github.com/sunholo/aivi/internal/eval"
)

// graph: addEdge/neighbors/shortestPath (Dijkstra over weighted edges).
// Stdlib-only — no pack library supplies graph algorithms, grounded on
// original_source/.../runtime/builtins/graph.rs for the contract.
// A graph value is a Record { edges: List { from, to, weight } }.
func graphNamespace() *namespace {
	n := newNamespace()
	n.add("addEdge", 4, graphAddEdge)
	n.add("neighbors", 2, graphNeighbors)
	n.add("shortestPath", 3, graphShortestPath)
	return n
}

type edge struct {
	from, to string
	weight   float64
}

func graphEdges(fname string, v eval.Value) ([]edge, error) {
	rec, err := wantRecord(fname, v)
	if err != nil {
		return nil, err
	}
	list, err := wantList(fname, rec.Fields["edges"])
	if err != nil {
		return nil, err
	}
	out := make([]edge, 0, len(list.Items))
	for _, item := range list.Items {
		er, err := wantRecord(fname, item)
		if err != nil {
			return nil, err
		}
		from, _ := wantText(fname, er.Fields["from"])
		to, _ := wantText(fname, er.Fields["to"])
		weight, _ := wantFloat(fname, er.Fields["weight"])
		out = append(out, edge{from, to, weight})
	}
	return out, nil
}

func edgesToGraph(edges []edge) eval.Value {
	items := make([]eval.Value, len(edges))
	for i, e := range edges {
		rec := eval.NewRecord()
		rec = rec.With("from", eval.Text{Value: e.from})
		rec = rec.With("to", eval.Text{Value: e.to})
		rec = rec.With("weight", eval.Float{Value: e.weight})
		items[i] = rec
	}
	g := eval.NewRecord()
	return g.With("edges", &eval.List{Items: items})
}

func graphAddEdge(args []eval.Value) (eval.Value, error) {
	edges, err := graphEdges("addEdge", args[0])
	if err != nil {
		return nil, err
	}
	from, err := wantText("addEdge", args[1])
	if err != nil {
		return nil, err
	}
	to, err := wantText("addEdge", args[2])
	if err != nil {
		return nil, err
	}
	weight, err := wantFloat("addEdge", args[3])
	if err != nil {
		return nil, err
	}
	return edgesToGraph(append(edges, edge{from, to, weight})), nil
}

func graphNeighbors(args []eval.Value) (eval.Value, error) {
	edges, err := graphEdges("neighbors", args[0])
	if err != nil {
		return nil, err
	}
	node, err := wantText("neighbors", args[1])
	if err != nil {
		return nil, err
	}
	var out []eval.Value
	for _, e := range edges {
		if e.from == node {
			rec := eval.NewRecord()
			rec = rec.With("to", eval.Text{Value: e.to})
			rec = rec.With("weight", eval.Float{Value: e.weight})
			out = append(out, rec)
		}
	}
	return &eval.List{Items: out}, nil
}

type pqItem struct {
	node string
	dist float64
	idx  int
}
type priorityQueue []*pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i]; pq[i].idx, pq[j].idx = i, j }
func (pq *priorityQueue) Push(x interface{}) { item := x.(*pqItem); item.idx = len(*pq); *pq = append(*pq, item) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// graphShortestPath runs Dijkstra; returns an empty path for unreachable
// nodes and a single-node path when start == goal.
func graphShortestPath(args []eval.Value) (eval.Value, error) {
	edges, err := graphEdges("shortestPath", args[0])
	if err != nil {
		return nil, err
	}
	start, err := wantText("shortestPath", args[1])
	if err != nil {
		return nil, err
	}
	goal, err := wantText("shortestPath", args[2])
	if err != nil {
		return nil, err
	}

	adj := map[string][]edge{}
	for _, e := range edges {
		adj[e.from] = append(adj[e.from], e)
	}

	if start == goal {
		return &eval.List{Items: []eval.Value{eval.Text{Value: start}}}, nil
	}

	dist := map[string]float64{start: 0}
	prev := map[string]string{}
	visited := map[string]bool{}

	pq := &priorityQueue{{node: start, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*pqItem)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true
		if cur.node == goal {
			break
		}
		for _, e := range adj[cur.node] {
			nd := cur.dist + e.weight
			if existing, ok := dist[e.to]; !ok || nd < existing {
				dist[e.to] = nd
				prev[e.to] = cur.node
				heap.Push(pq, &pqItem{node: e.to, dist: nd})
			}
		}
	}

	if _, reached := dist[goal]; !reached || math.IsInf(dist[goal], 1) {
		return &eval.List{}, nil
	}

	var path []string
	for at := goal; ; {
		path = append([]string{at}, path...)
		if at == start {
			break
		}
		p, ok := prev[at]
		if !ok {
			return &eval.List{}, nil
		}
		at = p
	}

	items := make([]eval.Value, len(path))
	for i, n := range path {
		items[i] = eval.Text{Value: n}
	}
	return &eval.List{Items: items}, nil
}
