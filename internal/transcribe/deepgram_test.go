package transcribe

import "testing"

func TestParseResult(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		want   Result
		wantOK bool
	}{
		{
			name:   "interim transcript",
			raw:    `{"is_final":false,"channel":{"alternatives":[{"transcript":"hello wor","confidence":0.82}]}}`,
			want:   Result{Text: "hello wor"},
			wantOK: true,
		},
		{
			name:   "final transcript",
			raw:    `{"is_final":true,"channel":{"alternatives":[{"transcript":"hello world","confidence":0.97}]}}`,
			want:   Result{Text: "hello world", Final: true},
			wantOK: true,
		},
		{
			name: "empty transcript skipped",
			raw:  `{"is_final":false,"channel":{"alternatives":[{"transcript":"","confidence":0}]}}`,
		},
		{
			name: "no alternatives",
			raw:  `{"is_final":false,"channel":{"alternatives":[]}}`,
		},
		{
			name: "metadata frame",
			raw:  `{"type":"Metadata","request_id":"abc"}`,
		},
		{
			name: "malformed json",
			raw:  `{"is_final":`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseResult([]byte(tc.raw))
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if got != tc.want {
				t.Fatalf("result = %+v, want %+v", got, tc.want)
			}
		})
	}
}
