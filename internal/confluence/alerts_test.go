package confluence

import (
	"strings"
	"testing"
)

func TestTranslateAlerts_BlockForm(t *testing.T) {
	in := "<p>~!</p>\n<p>Be careful.</p>\n<p>!~</p>"
	got := TranslateAlerts(in)
	want := `<p><ac:structured-macro ac:name="warning"><ac:rich-text-body><p>` +
		"\n<p>Be careful.</p>\n" +
		`</p></ac:rich-text-body></ac:structured-macro></p>`
	if got != want {
		t.Errorf("block form:\n got %q\nwant %q", got, want)
	}
}

func TestTranslateAlerts_InlineForm(t *testing.T) {
	got := TranslateAlerts("<p>~:Heads up.:~</p>")
	if !strings.Contains(got, `ac:name="info"`) {
		t.Errorf("inline form did not produce an info macro: %q", got)
	}
	if !strings.Contains(got, "Heads up.") {
		t.Errorf("inline body lost: %q", got)
	}
	if strings.Contains(got, "~:") || strings.Contains(got, ":~") {
		t.Errorf("delimiters survived translation: %q", got)
	}
}

func TestTranslateAlerts_BareForm(t *testing.T) {
	// Table cells carry no paragraph wrapping.
	got := TranslateAlerts("<td>~%Try this.%~</td>")
	if !strings.Contains(got, `ac:name="tip"`) {
		t.Errorf("bare form did not produce a tip macro: %q", got)
	}
	if strings.Contains(got, "~%") || strings.Contains(got, "%~") {
		t.Errorf("delimiters survived translation: %q", got)
	}
}

func TestTranslateAlerts_AllKinds(t *testing.T) {
	kinds := map[string]string{
		":": "info",
		"%": "tip",
		"?": "note",
		"!": "warning",
	}
	for delim, name := range kinds {
		got := TranslateAlerts("<p>~" + delim + "</p>\n<p>x</p>\n<p>" + delim + "~</p>")
		if !strings.Contains(got, `ac:name="`+name+`"`) {
			t.Errorf("delimiter %q did not map to %q: %q", delim, name, got)
		}
	}
}

func TestTranslateAlerts_Idempotent(t *testing.T) {
	in := "<p>~?</p>\n<p>Remember.</p>\n<p>?~</p>"
	once := TranslateAlerts(in)
	twice := TranslateAlerts(once)
	if once != twice {
		t.Errorf("translation not idempotent:\n once %q\ntwice %q", once, twice)
	}
}

func TestTranslateAlerts_NoDelimiters(t *testing.T) {
	in := "<p>Nothing to see here.</p>"
	if got := TranslateAlerts(in); got != in {
		t.Errorf("plain HTML changed: %q", got)
	}
}
