package validation

import "testing"

func TestContentValidatorRejectsTooShort(t *testing.T) {
	v := NewContentValidator(2, 300)
	res := v.Validate(Context{Content: "a"})
	if res.Valid {
		t.Fatal("expected a single-character message to be rejected")
	}
	if res.Code != CodeInvalidArgument {
		t.Fatalf("expected CodeInvalidArgument, got %v", res.Code)
	}
}

func TestContentValidatorRejectsTooLong(t *testing.T) {
	v := NewContentValidator(2, 10)
	res := v.Validate(Context{Content: "this message is far too long"})
	if res.Valid {
		t.Fatal("expected an overlong message to be rejected")
	}
}

func TestContentValidatorAcceptsWithinBounds(t *testing.T) {
	v := NewContentValidator(2, 300)
	if res := v.Validate(Context{Content: "hello"}); !res.Valid {
		t.Fatalf("expected a well-formed message to pass, got %+v", res)
	}
}
