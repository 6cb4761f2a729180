package validation

import "testing"

type tagged struct {
	Name   string `json:"name"   validate:"required,alnumhyphen"`
	Region string `json:"region" validate:"omitempty,region"`
	Level  string `koanf:"level" validate:"loglevel"`
	Path   string `query:"path"  validate:"safepath"`
}

type nonString struct {
	Count int `json:"count" validate:"region"`
}

type nested struct {
	Items []tagged `json:"items" validate:"min=1,dive"`
}

func TestTags_Valid(t *testing.T) {
	v := New()
	in := tagged{Name: "compute-1", Region: "eu-west-1", Level: "WARNING", Path: "/v3/clusters"}
	if err := v.Struct(in); err != nil {
		t.Fatalf("valid struct rejected: %v", err)
	}
	// Region is optional.
	in.Region = ""
	if err := v.Struct(in); err != nil {
		t.Fatalf("empty optional region rejected: %v", err)
	}
}

func TestTags_FieldErrors(t *testing.T) {
	v := New()
	err := v.Struct(tagged{Name: "-bad", Region: "us-east-9", Level: "verbose", Path: "../etc"})
	if err == nil {
		t.Fatalf("invalid struct accepted")
	}

	got := map[string]string{}
	for _, fe := range Fields(err) {
		got[fe.Field] = fe.Rule
		if fe.Message == "" {
			t.Errorf("empty message for %s", fe.Field)
		}
	}
	want := map[string]string{
		"name":   TagAlnumHyphen,
		"region": TagRegion,
		"level":  TagLogLevel,
		"path":   TagSafePath,
	}
	for field, rule := range want {
		if got[field] != rule {
			t.Errorf("field %q: rule = %q, want %q (all: %v)", field, got[field], rule, got)
		}
	}
}

func TestTags_NonStringFails(t *testing.T) {
	if err := New().Struct(nonString{Count: 1}); err == nil {
		t.Fatalf("region tag on int field: want error")
	}
}

func TestFields_NestedPath(t *testing.T) {
	err := New().Struct(nested{Items: []tagged{{Name: "ok-1", Level: "nope"}}})
	fes := Fields(err)
	if len(fes) != 1 {
		t.Fatalf("want 1 field error, got %#v", fes)
	}
	if fes[0].Field != "items[0].level" {
		t.Fatalf("field path = %q, want items[0].level", fes[0].Field)
	}
}

func TestFields_NonValidationError(t *testing.T) {
	if fes := Fields(nil); fes != nil {
		t.Fatalf("Fields(nil) = %#v, want nil", fes)
	}
}
