package mapview

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	out, err := Render(54.68, 25.27, "Test Place")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, want := range []string{"<iframe", "54.68", "25.27", `title="Test Place"`, "leaflet"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() output missing %q", want)
		}
	}
	if strings.Contains(out, "<script") {
		t.Error("map document is not escaped inside srcdoc")
	}
}

func TestRenderEscapesName(t *testing.T) {
	out, err := Render(0, 0, `Tom & Jerry's <b>`)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, `title="Tom &amp; Jerry&#39;s &lt;b&gt;"`) {
		t.Errorf("name not attribute-escaped: %s", out[:120])
	}
	if strings.Contains(out, "<b>") {
		t.Error("raw markup from the name leaked into the snippet")
	}
}
