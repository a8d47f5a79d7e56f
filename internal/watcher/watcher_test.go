package watcher

import "testing"

func TestDecodeEventPageTargetCreated(t *testing.T) {
	data := []byte(`{"method":"Target.targetCreated","params":{"targetInfo":{"targetId":"ABC123","type":"page","url":"https://teams.microsoft.com/v2/"}}}`)

	ev, ok := decodeEvent(data)
	if !ok {
		t.Fatal("decodeEvent() = not ok; want page event")
	}
	if got, want := ev.TargetID, "ABC123"; got != want {
		t.Fatalf("TargetID = %q; want %q", got, want)
	}
	if got, want := ev.URL, "https://teams.microsoft.com/v2/"; got != want {
		t.Fatalf("URL = %q; want %q", got, want)
	}
}

func TestDecodeEventIgnoresNonPageTargets(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"service worker", `{"method":"Target.targetCreated","params":{"targetInfo":{"targetId":"W1","type":"service_worker","url":"sw.js"}}}`},
		{"iframe", `{"method":"Target.targetCreated","params":{"targetInfo":{"targetId":"F1","type":"iframe","url":"about:blank"}}}`},
		{"other method", `{"method":"Target.targetInfoChanged","params":{"targetInfo":{"targetId":"T1","type":"page","url":"x"}}}`},
		{"command response", `{"id":1,"result":{}}`},
		{"malformed", `{"method":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := decodeEvent([]byte(tt.data)); ok {
				t.Fatalf("decodeEvent(%s) = ok; want ignored", tt.data)
			}
		})
	}
}
