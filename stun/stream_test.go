package stun

import "testing"

func TestStreamDecoderFeedAcrossChunks(t *testing.T) {
	m, err := NewMessage(ClassRequest, MethodBinding)
	if err != nil {
		t.Fatal(err)
	}
	sw, err := NewSoftware("chunked")
	if err != nil {
		t.Fatal(err)
	}
	m.Add(sw)
	encoded, err := m.Encode()
	if err != nil {
		t.Fatal(err)
	}

	d := NewStreamDecoder(ProfileSTUN)

	// Feed the header in two pieces; Next must report "not yet ready".
	d.Feed(encoded[:10])
	if _, ok, err := d.Next(); ok || err != nil {
		t.Fatalf("expected not-ready, got ok=%v err=%v", ok, err)
	}
	if got := d.Required(); got != 10 {
		t.Fatalf("Required() = %d, want 10 (remaining header bytes)", got)
	}

	d.Feed(encoded[10:])
	decoded, ok, err := d.Next()
	if !ok || err != nil {
		t.Fatalf("expected a decoded message, ok=%v err=%v", ok, err)
	}
	got, ok := GetAttribute[*Software](decoded)
	if !ok || got.Value != "chunked" {
		t.Fatalf("got %+v, ok=%v", got, ok)
	}

	// No more buffered bytes.
	if _, ok, _ := d.Next(); ok {
		t.Fatal("expected no further messages after draining the buffer")
	}
}

func TestStreamDecoderTwoMessagesBackToBack(t *testing.T) {
	m1, _ := NewMessage(ClassRequest, MethodBinding)
	m2, _ := NewMessage(ClassIndication, MethodBinding)
	e1, err := m1.Encode()
	if err != nil {
		t.Fatal(err)
	}
	e2, err := m2.Encode()
	if err != nil {
		t.Fatal(err)
	}

	d := NewStreamDecoder(ProfileSTUN)
	d.Feed(append(append([]byte{}, e1...), e2...))

	got1, ok, err := d.Next()
	if !ok || err != nil {
		t.Fatalf("first message: ok=%v err=%v", ok, err)
	}
	if got1.Class != ClassRequest {
		t.Errorf("first message class = %s", got1.Class)
	}

	got2, ok, err := d.Next()
	if !ok || err != nil {
		t.Fatalf("second message: ok=%v err=%v", ok, err)
	}
	if got2.Class != ClassIndication {
		t.Errorf("second message class = %s", got2.Class)
	}
}

func TestStreamDecoderResetDiscardsBuffer(t *testing.T) {
	d := NewStreamDecoder(ProfileSTUN)
	d.Feed([]byte{0, 1, 0, 0, 0, 0})
	d.Reset()
	if got := d.Required(); got != messageHeaderSize {
		t.Fatalf("Required() after Reset = %d, want %d", got, messageHeaderSize)
	}
}

func TestIsMessageRejectsTooShort(t *testing.T) {
	if IsMessage([]byte{0, 1, 0, 0}) {
		t.Error("too-short data should not look like a message")
	}
}

func TestIsMessageRejectsWrongCookie(t *testing.T) {
	data := make([]byte, messageHeaderSize)
	if IsMessage(data) {
		t.Error("all-zero data has no magic cookie and should not look like a message")
	}
}
