package wimlib

import "testing"

func utf16le(s string, withBOM bool) []byte {
	var out []byte
	if withBOM {
		out = append(out, 0xFF, 0xFE)
	}
	for _, r := range s {
		out = append(out, byte(r), byte(r>>8))
	}
	return out
}

func TestScrubXML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "drops BOM remnant and strips interleaved noise",
			input: "þÿ\x00<\x00x\x00m\x00l\x00>",
			want:  "<xml>",
		},
		{
			name:  "marker occurrences inside the payload are stripped too",
			input: "JK_a_b_c_",
			want:  "abc",
		},
		{
			name:  "too short to contain a payload",
			input: "ab",
			want:  "",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scrubXML(tt.input); got != tt.want {
				t.Errorf("scrubXML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecodeOutput(t *testing.T) {
	t.Run("utf-16le with BOM for xml requests off windows", func(t *testing.T) {
		got, err := decodeOutput(utf16le("<WIM/>", true), true, false)
		if err != nil {
			t.Fatalf("decodeOutput() error: %v", err)
		}
		if got != "<WIM/>" {
			t.Errorf("decodeOutput() = %q, want %q", got, "<WIM/>")
		}
	})

	t.Run("utf-16le without BOM defaults to little endian", func(t *testing.T) {
		got, err := decodeOutput(utf16le("<WIM/>", false), true, false)
		if err != nil {
			t.Fatalf("decodeOutput() error: %v", err)
		}
		if got != "<WIM/>" {
			t.Errorf("decodeOutput() = %q, want %q", got, "<WIM/>")
		}
	})

	t.Run("8-bit capture with scrub for xml requests on windows", func(t *testing.T) {
		got, err := decodeOutput([]byte("JK_<_a_/_>"), true, true)
		if err != nil {
			t.Fatalf("decodeOutput() error: %v", err)
		}
		if got != "<a/>" {
			t.Errorf("decodeOutput() = %q, want %q", got, "<a/>")
		}
	})

	t.Run("plain text is passed through untouched", func(t *testing.T) {
		in := []byte("d--- /dir\nf--- /dir/file\n")
		got, err := decodeOutput(in, false, false)
		if err != nil {
			t.Fatalf("decodeOutput() error: %v", err)
		}
		if got != string(in) {
			t.Errorf("decodeOutput() = %q, want %q", got, string(in))
		}

		// Running the pass again over already-clean text changes nothing.
		again, err := decodeOutput([]byte(got), false, false)
		if err != nil {
			t.Fatalf("decodeOutput() error: %v", err)
		}
		if again != got {
			t.Errorf("second pass = %q, want %q", again, got)
		}
	})

	t.Run("high bytes survive the 8-bit capture", func(t *testing.T) {
		got, err := decodeOutput([]byte{0x64, 0xE9, 0x6A, 0xE0}, false, true)
		if err != nil {
			t.Fatalf("decodeOutput() error: %v", err)
		}
		if got != "déjà" {
			t.Errorf("decodeOutput() = %q, want %q", got, "déjà")
		}
	})
}
