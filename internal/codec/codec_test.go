package codec

import (
	"bytes"
	"testing"
)

func TestScalarRoundTrip(t *testing.T) {
	w := NewWriter()
	w.PutInt32(-42)
	w.PutInt64(1234567890123)
	w.PutFloat64(3.14159)

	r := NewReader(w.Bytes())
	i32, err := r.GetInt32()
	if err != nil || i32 != -42 {
		t.Fatalf("GetInt32 = %d, %v; want -42, nil", i32, err)
	}
	i64, err := r.GetInt64()
	if err != nil || i64 != 1234567890123 {
		t.Fatalf("GetInt64 = %d, %v; want 1234567890123, nil", i64, err)
	}
	f, err := r.GetFloat64()
	if err != nil || f != 3.14159 {
		t.Fatalf("GetFloat64 = %v, %v; want 3.14159, nil", f, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("Remaining() = %d; want 0", r.Remaining())
	}
}

func TestStringRoundTrip(t *testing.T) {
	w := NewWriter()
	w.PutString("alice")
	w.PutString("")
	w.PutString("with spaces and 日本語")

	r := NewReader(w.Bytes())
	for _, want := range []string{"alice", "", "with spaces and 日本語"} {
		got, err := r.GetString()
		if err != nil {
			t.Fatalf("GetString() error = %v", err)
		}
		if got != want {
			t.Fatalf("GetString() = %q; want %q", got, want)
		}
	}
}

func TestFixedRoundTrip(t *testing.T) {
	w := NewWriter()
	w.PutFixed([]byte("abc"), 8)

	r := NewReader(w.Bytes())
	got, err := r.GetFixed(8)
	if err != nil {
		t.Fatalf("GetFixed() error = %v", err)
	}
	want := []byte{'a', 'b', 'c', 0, 0, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("GetFixed() = %v; want %v", got, want)
	}
}

func TestDecodeShortBuffer(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	if _, err := r.GetInt64(); err != ErrShortBuffer {
		t.Fatalf("GetInt64() error = %v; want ErrShortBuffer", err)
	}
}

func TestDecodeStringTruncated(t *testing.T) {
	w := NewWriter()
	w.PutUint64(100)
	w.PutBytes([]byte("short"))

	r := NewReader(w.Bytes())
	if _, err := r.GetString(); err != ErrShortBuffer {
		t.Fatalf("GetString() error = %v; want ErrShortBuffer", err)
	}
}

func TestValidateWrapsErrUnknownEnum(t *testing.T) {
	err := Validate("op_code", 99)
	if err == nil {
		t.Fatal("Validate() returned nil")
	}
	if !bytes.Contains([]byte(err.Error()), []byte("op_code")) {
		t.Fatalf("Validate() error = %q; want it to mention field name", err.Error())
	}
}

func TestLittleEndianByteOrder(t *testing.T) {
	w := NewWriter()
	w.PutInt32(1)
	got := w.Bytes()
	want := []byte{1, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("PutInt32(1) = %v; want little-endian %v", got, want)
	}
}
