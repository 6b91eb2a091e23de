package platform

import (
	"testing"
)

type stubRunner struct {
	outputs map[string][]byte
	errs    map[string]error
}

func (s stubRunner) Run(name string, args ...string) ([]byte, error) {
	key := name + " " + args[0]
	if err, ok := s.errs[key]; ok {
		return nil, err
	}
	return s.outputs[key], nil
}

func TestDetectVersionParsesPhpV(t *testing.T) {
	r := stubRunner{outputs: map[string][]byte{
		"php -v": []byte("PHP 8.2.10 (cli) (built: Jul  1 2023 00:00:00) (NTS)\nCopyright (c) The PHP Group\n"),
	}}
	v, err := DetectVersion(r)
	if err != nil {
		t.Fatalf("DetectVersion: %v", err)
	}
	if v != "8.2.10" {
		t.Fatalf("got %q, want 8.2.10", v)
	}
}

func TestDetectVersionMalformedOutput(t *testing.T) {
	r := stubRunner{outputs: map[string][]byte{"php -v": []byte("not php at all")}}
	if _, err := DetectVersion(r); err == nil {
		t.Fatal("expected an error for unparsable php -v output")
	}
}

func TestDetectExtensionsSkipsBlankAndHeaderLines(t *testing.T) {
	r := stubRunner{outputs: map[string][]byte{
		"php -m": []byte("[PHP Modules]\ncore\nmbstring\n\n[Zend Modules]\n"),
	}}
	exts, err := DetectExtensions(r)
	if err != nil {
		t.Fatalf("DetectExtensions: %v", err)
	}
	want := []string{"core", "mbstring"}
	if len(exts) != len(want) {
		t.Fatalf("got %v, want %v", exts, want)
	}
	for i := range want {
		if exts[i] != want[i] {
			t.Fatalf("got %v, want %v", exts, want)
		}
	}
}
