package codec

import "testing"

func TestDecodeResize(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"resize","cols":120,"rows":40}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	resize, ok := msg.(ResizeMessage)
	if !ok {
		t.Fatalf("expected ResizeMessage, got %T", msg)
	}
	if resize.Cols != 120 || resize.Rows != 40 {
		t.Fatalf("unexpected resize: %+v", resize)
	}
	if !resize.Valid() {
		t.Fatal("expected resize to be valid")
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"ping"}`))
	if err != ErrUnknownType {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestResizeInvalidDimensions(t *testing.T) {
	cases := []ResizeMessage{
		{Cols: 0, Rows: 24},
		{Cols: 80, Rows: 0},
		{Cols: -1, Rows: -1},
	}
	for _, c := range cases {
		if c.Valid() {
			t.Fatalf("expected %+v to be invalid", c)
		}
	}
}

func TestNewSessionMessage(t *testing.T) {
	m := NewSessionMessage("abc123")
	if m.Type != TypeSession || m.ID != "abc123" {
		t.Fatalf("unexpected message: %+v", m)
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	if err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}
