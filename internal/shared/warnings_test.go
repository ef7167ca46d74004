package shared

import (
	"sync"
	"testing"
)

func TestWarningCollector_Grouping(t *testing.T) {
	wc := NewWarningCollector(true)
	if wc.HasWarnings() {
		t.Error("fresh collector should have no warnings")
	}

	wc.AddSourceLookupWarning("iTunes", "Artist - Song", "HTTP 503")
	wc.AddTagWriteWarning("/music/a.mp3", "permission denied")
	wc.AddNoImageWarning("/music/b.mp3")
	wc.AddNoImageWarning("/music/c.mp3")

	if got := wc.GetWarningCount(); got != 4 {
		t.Errorf("GetWarningCount() = %d, want 4", got)
	}

	grouped := wc.GetWarningsByType()
	if len(grouped[SourceLookupWarning]) != 1 {
		t.Errorf("source lookup warnings = %d, want 1", len(grouped[SourceLookupWarning]))
	}
	if len(grouped[NoImageWarning]) != 2 {
		t.Errorf("no-image warnings = %d, want 2", len(grouped[NoImageWarning]))
	}
}

func TestWarningCollector_Disabled(t *testing.T) {
	wc := NewWarningCollector(false)
	wc.AddTagWriteWarning("/music/a.mp3", "boom")
	if wc.HasWarnings() {
		t.Error("disabled collector should drop warnings")
	}
}

func TestWarningCollector_ConcurrentAdds(t *testing.T) {
	wc := NewWarningCollector(true)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wc.AddNoImageWarning("/music/x.mp3")
		}()
	}
	wg.Wait()

	if got := wc.GetWarningCount(); got != 50 {
		t.Errorf("GetWarningCount() = %d, want 50", got)
	}
}
