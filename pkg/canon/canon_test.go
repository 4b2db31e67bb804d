package canon

import "testing"

func TestNameFormat(t *testing.T) {
	if got, want := Name(0), "_bb_v_0"; got != want {
		t.Errorf("Name(0) = %q, want %q", got, want)
	}
	if got, want := Name(12), "_bb_v_12"; got != want {
		t.Errorf("Name(12) = %q, want %q", got, want)
	}
}

func TestAllocatorFunctionAndParamOrder(t *testing.T) {
	a := New(nil)
	fn := a.AssignFunctionName("sum_list")
	if fn != "_bb_v_0" {
		t.Fatalf("function name = %q, want _bb_v_0", fn)
	}
	p0 := a.AssignParam("items")
	if p0 != "_bb_v_1" {
		t.Fatalf("first param = %q, want _bb_v_1", p0)
	}
}

func TestResolveIsStableAndDeterministic(t *testing.T) {
	a := New(nil)
	a.AssignFunctionName("f")
	a.AssignParam("x")

	first := a.Resolve("total")
	second := a.Resolve("total")
	if first != second {
		t.Errorf("Resolve not stable across repeated calls: %q != %q", first, second)
	}
	if first != "_bb_v_2" {
		t.Errorf("Resolve(total) = %q, want _bb_v_2", first)
	}

	other := a.Resolve("item")
	if other != "_bb_v_3" {
		t.Errorf("Resolve(item) = %q, want _bb_v_3", other)
	}
}

func TestResolveSkipsExcludedNames(t *testing.T) {
	a := New(map[string]bool{"len": true, "os": true})
	a.AssignFunctionName("f")

	if got := a.Resolve("len"); got != "len" {
		t.Errorf("builtin len was renamed to %q", got)
	}
	if got := a.Resolve("os"); got != "os" {
		t.Errorf("import binding os was renamed to %q", got)
	}
	if a.IsRenamed("len") || a.IsRenamed("os") {
		t.Errorf("excluded names should not be marked as renamed")
	}
}

func TestNameMappingRoundTrips(t *testing.T) {
	a := New(nil)
	a.AssignFunctionName("sum_list")
	a.AssignParam("items")
	a.Resolve("total")
	a.Resolve("item")

	nm := a.NameMapping()
	if nm["_bb_v_0"] != "sum_list" || nm["_bb_v_1"] != "items" || nm["_bb_v_2"] != "total" || nm["_bb_v_3"] != "item" {
		t.Errorf("unexpected name mapping: %+v", nm)
	}

	order := a.Order()
	want := []string{"_bb_v_0", "_bb_v_1", "_bb_v_2", "_bb_v_3"}
	if len(order) != len(want) {
		t.Fatalf("Order() length = %d, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Order()[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}
