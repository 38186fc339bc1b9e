package layout

import (
	"path/filepath"
	"testing"
)

func TestDigest(t *testing.T) {
	testCases := []struct {
		name  string
		input []byte
		want  Fingerprint
	}{
		{
			name:  "empty input",
			input: []byte{},
			want:  "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:  "plain bytes",
			input: []byte("abc"),
			want:  "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
		{
			name:  "json encoded string key",
			input: []byte(`"Pizza"`),
			want:  "847329705fa1f96dd0b9f6a4e82ff1e2021a24b6253949831fcff69e2c4ae51b",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Digest(tc.input)
			if got != tc.want {
				t.Errorf("Digest(%q) = %s, want %s", tc.input, got, tc.want)
			}
			if len(got) != FingerprintLen {
				t.Errorf("expected fingerprint length %d, got %d", FingerprintLen, len(got))
			}
			if !got.Valid() {
				t.Errorf("expected %s to be a valid fingerprint", got)
			}
		})
	}
}

func TestDigestDeterministic(t *testing.T) {
	a := Digest([]byte(`"Coffee"`))
	b := Digest([]byte(`"Coffee"`))
	if a != b {
		t.Errorf("expected equal fingerprints, got %s and %s", a, b)
	}
	if a == Digest([]byte(`"coffee"`)) {
		t.Errorf("expected different fingerprints for different keys")
	}
}

func TestResolve(t *testing.T) {
	fp := Fingerprint("847329705fa1f96dd0b9f6a4e82ff1e2021a24b6253949831fcff69e2c4ae51b")
	paths := Resolve("store", fp)

	wantShard := filepath.Join("store", "847329705f")
	if paths.ShardDir != wantShard {
		t.Errorf("ShardDir = %s, want %s", paths.ShardDir, wantShard)
	}
	if want := filepath.Join(wantShard, string(fp)+".key"); paths.KeyFile != want {
		t.Errorf("KeyFile = %s, want %s", paths.KeyFile, want)
	}
	if want := filepath.Join(wantShard, string(fp)+".value"); paths.ValueFile != want {
		t.Errorf("ValueFile = %s, want %s", paths.ValueFile, want)
	}
}

func TestResolveKey(t *testing.T) {
	fp, paths := ResolveKey("/tmp/root", []byte(`"Pizza"`))
	if fp.Shard() != "847329705f" {
		t.Errorf("expected shard 847329705f, got %s", fp.Shard())
	}
	if paths != Resolve("/tmp/root", fp) {
		t.Errorf("ResolveKey and Resolve disagree: %+v", paths)
	}
}

func TestFileNames(t *testing.T) {
	fp := Digest([]byte("x"))

	if !IsKeyFile(fp.KeyFileName()) || IsValueFile(fp.KeyFileName()) {
		t.Errorf("key file name not classified correctly: %s", fp.KeyFileName())
	}
	if !IsValueFile(fp.ValueFileName()) || IsKeyFile(fp.ValueFileName()) {
		t.Errorf("value file name not classified correctly: %s", fp.ValueFileName())
	}

	for _, name := range []string{fp.KeyFileName(), fp.ValueFileName()} {
		got, ok := FingerprintOf(name)
		if !ok || got != fp {
			t.Errorf("FingerprintOf(%s) = %s, %v", name, got, ok)
		}
	}

	if _, ok := FingerprintOf(".tmp-123"); ok {
		t.Errorf("expected temp file not to carry a fingerprint")
	}
}

func TestFingerprintValid(t *testing.T) {
	testCases := map[string]bool{
		string(Digest([]byte("a"))): true,
		"abc":                       false,
		"E3B0C44298FC1C149AFBF4C8996FB92427AE41E4649B934CA495991B7852B855": false,
		"z3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855": false,
	}
	for input, want := range testCases {
		if got := Fingerprint(input).Valid(); got != want {
			t.Errorf("Fingerprint(%q).Valid() = %v, want %v", input, got, want)
		}
	}
}
