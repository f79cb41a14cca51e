package mrs

import "testing"

func noopMap(in Record, emit func(Record)) error { return nil }

func noopReduce(key []byte, values [][]byte, emit func(Record)) error { return nil }

func TestNewRegistrySeedsDefaults(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Partitioner(""); err != nil {
		t.Fatalf("expected default partitioner to resolve, got %v", err)
	}
	if _, err := r.SerializerFor(""); err != nil {
		t.Fatalf("expected default serializer to resolve, got %v", err)
	}
}

func TestRegisterProgramExposesEachFunctionByName(t *testing.T) {
	r := NewRegistry()

	err := r.RegisterProgram("wc", Program{
		Map:    noopMap,
		Reduce: noopReduce,
	})
	if err != nil {
		t.Fatalf("RegisterProgram: %v", err)
	}

	if _, err := r.Mapper("wc"); err != nil {
		t.Fatalf("expected mapper registered under program name, got %v", err)
	}
	if _, err := r.Reducer("wc"); err != nil {
		t.Fatalf("expected reducer registered under program name, got %v", err)
	}
	if _, err := r.Combiner("wc"); err == nil {
		t.Fatal("expected no combiner registered when Program.Combine is nil")
	}

	names := r.Names()
	if len(names) != 1 || names[0] != "wc" {
		t.Fatalf("Names() = %v", names)
	}
}

func TestRegisterProgramRejectsDuplicateName(t *testing.T) {
	r := NewRegistry()
	if err := r.RegisterProgram("wc", Program{Map: noopMap}); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterProgram("wc", Program{Map: noopMap}); err == nil {
		t.Fatal("expected second RegisterProgram of the same name to fail")
	}
}

func TestCombinerEmptyNameIsNotAnError(t *testing.T) {
	r := NewRegistry()
	fn, err := r.Combiner("")
	if err != nil || fn != nil {
		t.Fatalf("Combiner(\"\") = %v, %v, want nil, nil", fn, err)
	}
}

func TestUnknownIdentifiersError(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Mapper("missing"); err == nil {
		t.Fatal("expected error for unregistered mapper")
	}
	if _, err := r.Reducer("missing"); err == nil {
		t.Fatal("expected error for unregistered reducer")
	}
	if _, err := r.Partitioner("missing"); err == nil {
		t.Fatal("expected error for unregistered partitioner")
	}
	if _, err := r.SerializerFor("missing"); err == nil {
		t.Fatal("expected error for unregistered serializer")
	}
	if _, err := r.Program("missing"); err == nil {
		t.Fatal("expected error for unregistered program")
	}
}
