package Trees

import (
	"math/bits"
	"math/rand"
	"slices"
	"testing"

	"github.com/cockroachdb/errors"
)

var rg = rand.New(rand.NewSource(0))

type intTree = Tree[int, uint32]

const (
	tOpN   = 3000
	tSmall = 40
)

// expect checks tree against want: structure, values, ranks.
func expect(t *testing.T, tree *intTree, want []int) {
	t.Helper()
	if err := tree.Check(); err != nil {
		t.Fatalf("tree is corrupt: %v", err)
	}
	if int(tree.Size()) != len(want) {
		t.Fatalf("tree size is %d, want %d", tree.Size(), len(want))
	}
	if got := tree.Values(); !slices.Equal(got, want) {
		t.Fatalf("tree is %v, want %v", got, want)
	}
	for i, w := range want {
		if v := tree.Get(tree.At(uint32(i))); v != w {
			t.Fatalf("value at %d is %d, want %d", i, v, w)
		}
	}
}

// positionAt returns the position that makes a new node land at index k.
func positionAt(tree *intTree, k int) Position[uint32] {
	if k == int(tree.Size()) {
		return tree.LastPosition()
	}
	return tree.Before(tree.At(uint32(k)))
}

func fill(t *testing.T, tree *intTree, n int) []int {
	t.Helper()
	want := make([]int, 0, n)
	for i := range n {
		if _, err := tree.Emplace(tree.LastPosition(), i); err != nil {
			t.Fatalf("failed to append %d: %v", i, err)
		}
		want = append(want, i)
	}
	return want
}

func mustPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("%s: no panic", name)
			return
		}
		if err, ok := r.(error); !ok || !errors.HasAssertionFailure(err) {
			t.Errorf("%s: panic %v is not an assertion failure", name, r)
		}
	}()
	f()
}

func TestTree_RoundTrip(t *testing.T) {
	tree := New[int, uint32]()
	expect(t, tree, nil)
	for _, v := range []int{1, 2, 3} {
		if _, err := tree.Emplace(tree.LastPosition(), v); err != nil {
			t.Fatal(err)
		}
	}
	expect(t, tree, []int{1, 2, 3})
	tree.Erase(tree.At(1), true, true)
	expect(t, tree, []int{1, 3})
	if _, err := tree.Emplace(tree.After(tree.At(0)), 5); err != nil {
		t.Fatal(err)
	}
	expect(t, tree, []int{1, 5, 3})
}

func TestTree_Emplace(t *testing.T) {
	tree := New[int, uint32]()
	var want []int
	for i := range tOpN {
		k := rg.Intn(len(want) + 1)
		var pos Position[uint32]
		switch {
		case len(want) == 0:
			pos = tree.FirstPosition()
			if pos.Side() != Root {
				t.Fatalf("empty tree gives position %s", pos)
			}
		case k < len(want) && rg.Intn(2) == 0:
			pos = tree.Before(tree.At(uint32(k)))
		case k > 0:
			pos = tree.After(tree.At(uint32(k - 1)))
		default:
			pos = tree.FirstPosition()
		}
		n, err := tree.Emplace(pos, i)
		if err != nil {
			t.Fatalf("failed to insert %d: %v", i, err)
		}
		want = slices.Insert(want, k, i)
		if got := tree.Index(n); int(got) != k {
			t.Fatalf("new node has index %d, want %d", got, k)
		}
		if i%97 == 0 {
			expect(t, tree, want)
		}
	}
	expect(t, tree, want)
	if h, limit := tree.Height(), 2*bits.Len(uint(tOpN)); h > limit {
		t.Errorf("tree height is %d, want at most %d", h, limit)
	}
	t.Logf("height: %d, size: %d.\n", tree.Height(), tree.Size())
}

func TestTree_Ends(t *testing.T) {
	tree := New[int, uint32]()
	var want []int
	for i := range tOpN {
		if i%2 == 0 {
			tree.Emplace(tree.FirstPosition(), i)
			want = slices.Insert(want, 0, i)
		} else {
			tree.Emplace(tree.LastPosition(), i)
			want = append(want, i)
		}
		if tree.Get(tree.Front()) != want[0] || tree.Get(tree.Back()) != want[len(want)-1] {
			t.Fatalf("ends are %d and %d, want %d and %d", tree.Get(tree.Front()), tree.Get(tree.Back()), want[0], want[len(want)-1])
		}
	}
	expect(t, tree, want)
	if h, limit := tree.Height(), 2*bits.Len(uint(tOpN)); h > limit {
		t.Errorf("tree height is %d, want at most %d", h, limit)
	}
}

func TestTree_Rank(t *testing.T) {
	tree := New[int, uint32]()
	fill(t, tree, tSmall*5)
	for i := range tree.Size() {
		n := tree.At(i)
		if got := tree.Index(n); got != i {
			t.Errorf("index of node at %d is %d", i, got)
		}
		for range i {
			n = tree.Prev(n)
		}
		if n != tree.Front() {
			t.Errorf("%d steps back from %d is %s, want the front", i, i, n)
		}
		if !tree.Prev(n).IsNil() {
			t.Errorf("front has a predecessor")
		}
	}
	if !tree.Next(tree.Back()).IsNil() {
		t.Errorf("back has a successor")
	}
	mustPanic(t, "At(Size())", func() { tree.At(tree.Size()) })
}

func TestTree_Erase(t *testing.T) {
	for _, rebalance := range []bool{true, false} {
		tree := New[int, uint32]()
		want := fill(t, tree, tOpN)
		for len(want) > 0 {
			i := rg.Intn(len(want))
			var next Node[uint32]
			if i+1 < len(want) {
				next = tree.At(uint32(i + 1))
			}
			tree.Erase(tree.At(uint32(i)), rebalance, true)
			want = slices.Delete(want, i, i+1)
			if i < len(want) && tree.At(uint32(i)) != next {
				t.Fatalf("node at %d after erase is %s, want %s", i, tree.At(uint32(i)), next)
			}
			if len(want)%101 == 0 {
				expect(t, tree, want)
			}
		}
		expect(t, tree, nil)
		if tree.Pool().Len() != 0 {
			t.Errorf("pool holds %d nodes, want 0", tree.Pool().Len())
		}
	}
}

func TestTree_AddDel(t *testing.T) {
	tree := New[int, uint32]()
	var want []int
	for i := range tOpN * 2 {
		if len(want) > 0 && rg.Intn(3) == 0 {
			k := rg.Intn(len(want))
			tree.Erase(tree.At(uint32(k)), rg.Intn(4) != 0, true)
			want = slices.Delete(want, k, k+1)
		} else {
			k := rg.Intn(len(want) + 1)
			if _, err := tree.Emplace(positionAt(tree, k), i); err != nil {
				t.Fatal(err)
			}
			want = slices.Insert(want, k, i)
		}
	}
	expect(t, tree, want)
	t.Logf("height: %d, size: %d.\n", tree.Height(), tree.Size())
}

func TestTree_Stale(t *testing.T) {
	tree := New[int, uint32]()
	fill(t, tree, 3)
	n := tree.At(1)
	tree.Erase(n, true, true)
	mustPanic(t, "Get", func() { tree.Get(n) })
	mustPanic(t, "Next", func() { tree.Next(n) })
	mustPanic(t, "Before", func() { tree.Before(n) })
	mustPanic(t, "Erase", func() { tree.Erase(n, true, true) })
	// the slot is reused, the old handle stays stale.
	m, _ := tree.Emplace(tree.LastPosition(), 7)
	if m.i != n.i {
		t.Fatalf("freed slot %d not reused, got %d", n.i, m.i)
	}
	if m.gen <= n.gen {
		t.Errorf("reused slot has generation %d, old handle %d", m.gen, n.gen)
	}
	mustPanic(t, "Get after reuse", func() { tree.Get(n) })
	if tree.Get(m) != 7 {
		t.Errorf("new node holds %d, want 7", tree.Get(m))
	}
	mustPanic(t, "nil node", func() { tree.Get(Node[uint32]{}) })
}

func TestTree_Positions(t *testing.T) {
	tree := New[int, uint32]()
	if p := tree.LastPosition(); p.Side() != Root || !p.Node().IsNil() {
		t.Errorf("last position of an empty tree is %s", p)
	}
	a, _ := tree.Emplace(tree.LastPosition(), 0)
	mustPanic(t, "root on non empty", func() { tree.Emplace(Position[uint32]{}, 1) })
	if p := tree.Before(a); p.Side() != Left || p.Node() != a {
		t.Errorf("before a lone node is %s", p)
	}
	b, _ := tree.Emplace(tree.Before(a), 1)
	mustPanic(t, "taken", func() { tree.Emplace(Position[uint32]{a, Left}, 2) })
	if p := tree.Before(a); p.Side() != Right || p.Node() != b {
		t.Errorf("before a is %s, want right of %s", p, b)
	}
	if p := tree.PrevPosition(Node[uint32]{}); p != tree.LastPosition() {
		t.Errorf("position before the end is %s", p)
	}
	expect(t, tree, []int{1, 0})
}

func TestTree_Detach(t *testing.T) {
	tree := New[int, uint32]()
	want := fill(t, tree, tSmall)
	for range tSmall {
		i := rg.Intn(len(want))
		n := tree.At(uint32(i))
		v := want[i]
		tree.Erase(n, true, false)
		want = slices.Delete(want, i, i+1)
		if tree.Get(n) != v {
			t.Fatalf("detached node holds %d, want %d", tree.Get(n), v)
		}
		mustPanic(t, "erase detached", func() { tree.Erase(n, true, true) })
		k := rg.Intn(len(want) + 1)
		tree.Link(positionAt(tree, k), n)
		want = slices.Insert(want, k, v)
		expect(t, tree, want)
	}
	n, err := tree.CreateNode(-1)
	if err != nil {
		t.Fatal(err)
	}
	mustPanic(t, "link root", func() { tree.Link(tree.LastPosition(), tree.pool.handle(tree.root)) })
	before := tree.Pool().Len()
	tree.Destroy(n)
	if tree.Pool().Len() != before-1 {
		t.Errorf("pool holds %d nodes, want %d", tree.Pool().Len(), before-1)
	}
	expect(t, tree, want)
}

func TestTree_Join(t *testing.T) {
	for range tSmall {
		p := NewPool[int, uint32]()
		a, b := NewIn(p), NewIn(p)
		na, nb := rg.Intn(tSmall*10), rg.Intn(tSmall*10)
		want := fill(t, a, na)
		var other []int
		for i := range nb {
			b.Emplace(b.LastPosition(), -i-1)
			other = append(other, -i-1)
		}
		k := 0
		if na > 0 {
			k = rg.Intn(na + 1)
		}
		a.Join(positionAt(a, k), b)
		want = slices.Insert(want, k, other...)
		expect(t, a, want)
		expect(t, b, nil)
		if p.Len() != na+nb {
			t.Errorf("pool holds %d nodes, want %d", p.Len(), na+nb)
		}
		// b is reusable.
		b.Emplace(b.LastPosition(), 1)
		expect(t, b, []int{1})
	}
	a, c := New[int, uint32](), New[int, uint32]()
	mustPanic(t, "different pools", func() { a.Join(a.LastPosition(), c) })
	mustPanic(t, "self", func() { a.Join(a.LastPosition(), a) })
}

func TestTree_JoinBalance(t *testing.T) {
	p := NewPool[int, uint32]()
	a := NewIn(p)
	var want []int
	for i := range tSmall {
		b := NewIn(p)
		n := rg.Intn(200)
		var part []int
		for j := range n {
			b.Emplace(b.LastPosition(), i*1000+j)
			part = append(part, i*1000+j)
		}
		k := rg.Intn(len(want) + 1)
		a.Join(positionAt(a, k), b)
		want = slices.Insert(want, k, part...)
	}
	expect(t, a, want)
	if h, limit := a.Height(), 3*bits.Len(uint(len(want)))+2; h > limit {
		t.Errorf("tree height is %d, want at most %d", h, limit)
	}
}

func TestTree_Split(t *testing.T) {
	for n := range tSmall {
		for i := range n + 1 {
			a := New[int, uint32]()
			want := fill(t, a, n)
			b := a.Split(uint32(i))
			expect(t, a, want[:i])
			expect(t, b, want[i:])
			a.Join(a.LastPosition(), b)
			expect(t, a, want)
		}
	}
	a := New[int, uint32]()
	want := fill(t, a, tOpN)
	for range tSmall {
		i := rg.Intn(len(want) + 1)
		b := a.Split(uint32(i))
		expect(t, a, want[:i])
		expect(t, b, want[i:])
		if h, limit := b.Height(), 3*bits.Len(uint(len(want)))+2; h > limit {
			t.Errorf("split tree height is %d, want at most %d", h, limit)
		}
		joinBack(a, b)
		expect(t, a, want)
	}
	mustPanic(t, "split past end", func() { a.Split(a.Size() + 1) })
}

func TestTree_SplitJoinHeight(t *testing.T) {
	for _, n := range []int{1000, 10000} {
		a := New[int, uint32](WithPoolOptions(WithCapacity(n)))
		want := fill(t, a, n)
		limit, maxH := 3*bits.Len(uint(n))+2, 0
		for r := range 4 * n {
			k := (r*104729+7)%(n-1) + 1
			joinBack(a, a.Split(uint32(k)))
			if r%16 == 0 {
				maxH = max(maxH, a.Height())
			}
		}
		expect(t, a, want)
		if maxH > limit {
			t.Errorf("n=%d: tree height reached %d, want at most %d", n, maxH, limit)
		}
		t.Logf("n: %d, max height: %d.\n", n, maxH)
	}
}

func TestTree_LinkSubtree(t *testing.T) {
	p := NewPool[int, uint32]()
	a := NewIn(p)
	var want []int
	for i := range tSmall {
		b := NewIn(p)
		var part []int
		for j := range rg.Intn(300) + 2 {
			b.Emplace(b.LastPosition(), i*1000+j)
			part = append(part, i*1000+j)
		}
		// b lets go of its nodes, which leaves them a detached subtree.
		sub := b.pool.handle(b.root)
		b.root, b.first, b.last = 0, 0, 0
		k := rg.Intn(len(want) + 1)
		a.Link(positionAt(a, k), sub)
		want = slices.Insert(want, k, part...)
		expect(t, a, want)
	}
	if h, limit := a.Height(), 3*bits.Len(uint(len(want)))+2; h > limit {
		t.Errorf("tree height is %d, want at most %d", h, limit)
	}
}

// joinBack puts b back behind a.
func joinBack(a, b *intTree) {
	a.Join(a.LastPosition(), b)
}

func TestTree_DestroyAll(t *testing.T) {
	tree := New[int, uint32]()
	fill(t, tree, tOpN)
	old := tree.At(10)
	tree.DestroyAll()
	expect(t, tree, nil)
	if tree.Pool().Len() != 0 {
		t.Errorf("pool holds %d nodes, want 0", tree.Pool().Len())
	}
	mustPanic(t, "stale after DestroyAll", func() { tree.Get(old) })
	if _, err := tree.Emplace(tree.LastPosition(), 42); err != nil {
		t.Fatal(err)
	}
	expect(t, tree, []int{42})
}

func TestTree_Exhausted(t *testing.T) {
	tree := New[int, uint8]()
	for i := range 255 {
		if _, err := tree.Emplace(tree.LastPosition(), i); err != nil {
			t.Fatalf("failed to insert %d: %v", i, err)
		}
	}
	if _, err := tree.Emplace(tree.FirstPosition(), -1); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("error is %v, want ErrPoolExhausted", err)
	}
	if _, err := tree.CreateNode(-1); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("error is %v, want ErrPoolExhausted", err)
	}
	if err := tree.Check(); err != nil {
		t.Fatal(err)
	}
	if tree.Size() != 255 || tree.Get(tree.Front()) != 0 {
		t.Errorf("tree changed by a failed insert")
	}
	tree.Erase(tree.Front(), true, true)
	if _, err := tree.Emplace(tree.FirstPosition(), -1); err != nil {
		t.Errorf("insert after erase failed: %v", err)
	}

	small := New[string, uint32](WithPoolOptions(WithLimit(3), WithCapacity(1)))
	for _, v := range []string{"a", "b", "c"} {
		if _, err := small.Emplace(small.LastPosition(), v); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := small.Emplace(small.LastPosition(), "d"); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("error is %v, want ErrPoolExhausted", err)
	}
	if got := small.Values(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("tree is %v", got)
	}
}

func TestTree_Seq(t *testing.T) {
	tree := New[int, uint32]()
	want := fill(t, tree, tSmall)
	var got []int
	for i, v := range tree.All() {
		if int(i) != *v {
			t.Errorf("index %d yields %d", i, *v)
		}
		if got = append(got, *v); len(got) == tSmall/2 {
			break
		}
	}
	if !slices.Equal(got, want[:tSmall/2]) {
		t.Errorf("All yields %v", got)
	}
	got = got[:0]
	for i, v := range tree.Backward() {
		if int(i) != *v {
			t.Errorf("index %d yields %d", i, *v)
		}
		*v *= 2
		got = append(got, *v/2)
	}
	slices.Reverse(got)
	if !slices.Equal(got, want) {
		t.Errorf("Backward yields %v", got)
	}
	if tree.Get(tree.Back()) != 2*want[len(want)-1] {
		t.Errorf("write through Backward lost")
	}
}
