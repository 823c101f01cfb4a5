package native

import "testing"

func TestHeadlessCreateAndKind(t *testing.T) {
	b := NewHeadless()

	h := b.CreateElement(KindButton)
	if h == NilHandle {
		t.Fatal("CreateElement returned NilHandle")
	}
	kind, ok := b.ElementKind(h)
	if !ok || kind != KindButton {
		t.Errorf("ElementKind = %v, %v; want button, true", kind, ok)
	}

	if got := b.CreateElement(Kind(99)); got != NilHandle {
		t.Errorf("unknown kind should fail creation, got %v", got)
	}

	b.FailCreation = true
	if got := b.CreateElement(KindLabel); got != NilHandle {
		t.Errorf("FailCreation should force NilHandle, got %v", got)
	}
}

func TestHeadlessChildList(t *testing.T) {
	b := NewHeadless()
	parent := b.CreateElement(KindContainer)
	c1 := b.CreateElement(KindLabel)
	c2 := b.CreateElement(KindLabel)
	c3 := b.CreateElement(KindLabel)

	for _, c := range []Handle{c1, c2} {
		if err := b.AddChild(parent, c, -1); err != nil {
			t.Fatalf("AddChild: %v", err)
		}
	}
	if err := b.AddChild(parent, c3, 1); err != nil {
		t.Fatalf("AddChild at index: %v", err)
	}

	want := []Handle{c1, c3, c2}
	got := b.Children(parent)
	if len(got) != len(want) {
		t.Fatalf("Children = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("child %d = %v, want %v", i, got[i], want[i])
		}
	}

	if b.Parent(c3) != parent {
		t.Errorf("Parent(c3) = %v, want %v", b.Parent(c3), parent)
	}

	if err := b.RemoveChild(parent, 1); err != nil {
		t.Fatalf("RemoveChild: %v", err)
	}
	if b.Parent(c3) != NilHandle {
		t.Error("removed child should have no parent")
	}
	if err := b.RemoveChild(parent, 5); err == nil {
		t.Error("out-of-range RemoveChild should fail")
	}
}

func TestHeadlessExclusiveParentage(t *testing.T) {
	b := NewHeadless()
	p1 := b.CreateElement(KindContainer)
	p2 := b.CreateElement(KindContainer)
	c := b.CreateElement(KindLabel)

	if err := b.AddChild(p1, c, 0); err != nil {
		t.Fatal(err)
	}
	if err := b.AddChild(p2, c, 0); err != nil {
		t.Fatal(err)
	}

	if len(b.Children(p1)) != 0 {
		t.Error("child should have been detached from the first parent")
	}
	if b.Parent(c) != p2 {
		t.Errorf("Parent = %v, want %v", b.Parent(c), p2)
	}
}

func TestHeadlessRejectsLeafParentAndCycles(t *testing.T) {
	b := NewHeadless()
	label := b.CreateElement(KindLabel)
	child := b.CreateElement(KindLabel)
	if err := b.AddChild(label, child, 0); err == nil {
		t.Error("leaf elements must reject children")
	}

	outer := b.CreateElement(KindContainer)
	inner := b.CreateElement(KindContainer)
	if err := b.AddChild(outer, inner, 0); err != nil {
		t.Fatal(err)
	}
	if err := b.AddChild(inner, outer, 0); err == nil {
		t.Error("cycle must be rejected")
	}
	if err := b.AddChild(outer, outer, 0); err == nil {
		t.Error("self-parenting must be rejected")
	}
}

func TestHeadlessDestroySubtree(t *testing.T) {
	b := NewHeadless()
	root := b.CreateElement(KindContainer)
	mid := b.CreateElement(KindContainer)
	leaf := b.CreateElement(KindLabel)
	if err := b.AddChild(root, mid, 0); err != nil {
		t.Fatal(err)
	}
	if err := b.AddChild(mid, leaf, 0); err != nil {
		t.Fatal(err)
	}

	b.DestroyElement(mid)

	if _, ok := b.ElementKind(mid); ok {
		t.Error("destroyed element still alive")
	}
	if _, ok := b.ElementKind(leaf); ok {
		t.Error("descendant of destroyed element still alive")
	}
	if len(b.Children(root)) != 0 {
		t.Error("destroyed element still in parent's child list")
	}
}

func TestHeadlessDispatchBubbles(t *testing.T) {
	b := NewHeadless()
	root := b.CreateElement(KindContainer)
	btn := b.CreateElement(KindButton)
	if err := b.AddChild(root, btn, 0); err != nil {
		t.Fatal(err)
	}

	var seen []Handle
	b.BindEventListener(btn, EventClick, func(detail any, target Handle) DispatchResult {
		seen = append(seen, btn)
		return DispatchResult{}
	})
	b.BindEventListener(root, EventClick, func(detail any, target Handle) DispatchResult {
		seen = append(seen, root)
		if target != btn {
			t.Errorf("bubbled target = %v, want %v", target, btn)
		}
		return DispatchResult{}
	})

	b.FireEvent(btn, EventClick, MouseDetail{Button: 0})

	if len(seen) != 2 || seen[0] != btn || seen[1] != root {
		t.Errorf("dispatch order = %v, want [btn root]", seen)
	}
}

func TestHeadlessDispatchStopsOnCancel(t *testing.T) {
	b := NewHeadless()
	root := b.CreateElement(KindContainer)
	btn := b.CreateElement(KindButton)
	if err := b.AddChild(root, btn, 0); err != nil {
		t.Fatal(err)
	}

	b.BindEventListener(btn, EventClick, func(any, Handle) DispatchResult {
		return DispatchResult{PropagationCancelled: true}
	})
	rootCalls := 0
	b.BindEventListener(root, EventClick, func(any, Handle) DispatchResult {
		rootCalls++
		return DispatchResult{}
	})

	res := b.FireEvent(btn, EventClick, MouseDetail{})
	if !res.PropagationCancelled {
		t.Error("result should carry the cancellation flag")
	}
	if rootCalls != 0 {
		t.Error("cancelled event must not bubble")
	}
}

func TestHeadlessNonBubblingEvents(t *testing.T) {
	b := NewHeadless()
	root := b.CreateElement(KindContainer)
	entry := b.CreateElement(KindEntry)
	if err := b.AddChild(root, entry, 0); err != nil {
		t.Fatal(err)
	}

	rootCalls := 0
	b.BindEventListener(root, EventTextChange, func(any, Handle) DispatchResult {
		rootCalls++
		return DispatchResult{}
	})

	b.FireEvent(entry, EventTextChange, TextDetail{Value: "hi"})
	if rootCalls != 0 {
		t.Error("textchange must not bubble")
	}
}

func TestHeadlessUnbind(t *testing.T) {
	b := NewHeadless()
	btn := b.CreateElement(KindButton)

	calls := 0
	id := b.BindEventListener(btn, EventClick, func(any, Handle) DispatchResult {
		calls++
		return DispatchResult{}
	})
	b.UnbindEventListener(btn, id)
	// Unknown ids are ignored.
	b.UnbindEventListener(btn, RegistrationID(4242))

	b.FireEvent(btn, EventClick, MouseDetail{})
	if calls != 0 {
		t.Error("unbound listener fired")
	}
}

func TestHeadlessWindow(t *testing.T) {
	b := NewHeadless()
	w := b.CreateWindow(WindowAttributes{Title: "main", Width: 640, Height: 480})
	if w == NilHandle {
		t.Fatal("CreateWindow failed")
	}

	body := b.CreateElement(KindContainer)
	child := b.CreateElement(KindLabel)
	b.SetWindowBody(w, body)
	if err := b.AddChild(body, child, 0); err != nil {
		t.Fatal(err)
	}

	if got := b.WindowOf(child); got != w {
		t.Errorf("WindowOf(child) = %v, want %v", got, w)
	}

	b.SetWindowTitle(w, "renamed")
	attrs, ok := b.WindowAttrs(w)
	if !ok || attrs.Title != "renamed" {
		t.Errorf("WindowAttrs = %+v, %v", attrs, ok)
	}

	resizes := 0
	b.BindWindowEventListener(w, EventResize, func(detail any, target Handle) DispatchResult {
		resizes++
		return DispatchResult{}
	})
	b.FireWindowEvent(w, EventResize, BoundsDetail{Width: 800, Height: 600})
	if resizes != 1 {
		t.Errorf("resize listener calls = %d, want 1", resizes)
	}

	b.CloseWindow(w)
	if _, ok := b.ElementKind(body); ok {
		t.Error("window body should be destroyed with the window")
	}
	if got := b.WindowOf(child); got != NilHandle {
		t.Errorf("WindowOf after close = %v, want NilHandle", got)
	}
}

func TestHeadlessHoverTracking(t *testing.T) {
	b := NewHeadless()
	e := b.CreateElement(KindButton)
	b.SetStyle(e, Style{"background": "blue"})
	b.SetHoverStyle(e, Style{"background": "red"})

	b.FireEvent(e, EventMouseEnter, nil)
	if b.Hovered() != e {
		t.Error("mouseenter should mark the element hovered")
	}
	if got := b.EffectiveStyle(e)["background"]; got != "red" {
		t.Errorf("hovered background = %q, want red", got)
	}

	b.FireEvent(e, EventMouseLeave, nil)
	if b.Hovered() != NilHandle {
		t.Error("mouseleave should clear hover")
	}
	if got := b.EffectiveStyle(e)["background"]; got != "blue" {
		t.Errorf("idle background = %q, want blue", got)
	}
}

func TestKindNames(t *testing.T) {
	for kind, name := range kindNames {
		got, ok := KindByName(name)
		if !ok || got != kind {
			t.Errorf("KindByName(%q) = %v, %v", name, got, ok)
		}
	}
	if _, ok := KindByName("marquee"); ok {
		t.Error("unknown kind name should not resolve")
	}
	if KindLabel.ContainerCapable() {
		t.Error("label must not be container capable")
	}
	if !KindScroll.ContainerCapable() {
		t.Error("scroll must be container capable")
	}
}
