package shared

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// WarningType represents different types of warnings
type WarningType int

const (
	SourceLookupWarning WarningType = iota
	CoverArtFetchWarning
	TagWriteWarning
	NoImageWarning
)

// Warning represents a single warning with context
type Warning struct {
	Type    WarningType
	Message string
	Context string // file or query context
	Details string // additional details like error message
}

// WarningCollector collects non-fatal warnings across concurrent workers.
type WarningCollector struct {
	mu       sync.Mutex
	warnings []Warning
	enabled  bool
}

// NewWarningCollector creates a new warning collector
func NewWarningCollector(enabled bool) *WarningCollector {
	return &WarningCollector{
		warnings: make([]Warning, 0),
		enabled:  enabled,
	}
}

// AddWarning adds a warning to the collector
func (wc *WarningCollector) AddWarning(warningType WarningType, context, message, details string) {
	if !wc.enabled {
		return
	}

	wc.mu.Lock()
	defer wc.mu.Unlock()
	wc.warnings = append(wc.warnings, Warning{
		Type:    warningType,
		Message: message,
		Context: context,
		Details: details,
	})
}

// AddSourceLookupWarning records a failed lookup against an external source.
func (wc *WarningCollector) AddSourceLookupWarning(source, context, details string) {
	wc.AddWarning(SourceLookupWarning, fmt.Sprintf("%s: %s", source, context), "Lookup failed", details)
}

// AddCoverArtFetchWarning records a failed artwork download.
func (wc *WarningCollector) AddCoverArtFetchWarning(context, details string) {
	wc.AddWarning(CoverArtFetchWarning, context, "Could not download cover art", details)
}

// AddTagWriteWarning records a failed tag-store write.
func (wc *WarningCollector) AddTagWriteWarning(path, details string) {
	wc.AddWarning(TagWriteWarning, path, "Failed to write tags", details)
}

// AddNoImageWarning records a resolution that produced tags but no usable image.
func (wc *WarningCollector) AddNoImageWarning(path string) {
	wc.AddWarning(NoImageWarning, path, "No image to embed", "")
}

// HasWarnings returns true if there are any warnings
func (wc *WarningCollector) HasWarnings() bool {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return len(wc.warnings) > 0
}

// GetWarningCount returns the total number of warnings
func (wc *WarningCollector) GetWarningCount() int {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return len(wc.warnings)
}

// GetWarningsByType returns warnings grouped by type
func (wc *WarningCollector) GetWarningsByType() map[WarningType][]Warning {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	grouped := make(map[WarningType][]Warning)
	for _, warning := range wc.warnings {
		grouped[warning.Type] = append(grouped[warning.Type], warning)
	}
	return grouped
}

// PrintSummary prints a formatted summary of all warnings
func (wc *WarningCollector) PrintSummary() {
	if !wc.HasWarnings() {
		return
	}

	ColorWarning.Printf("\n⚠️  Warning Summary (%d warnings):\n", wc.GetWarningCount())
	ColorWarning.Println(strings.Repeat("─", 50))

	grouped := wc.GetWarningsByType()

	// Sort warning types for consistent output
	var types []WarningType
	for warningType := range grouped {
		types = append(types, warningType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, warningType := range types {
		wc.printWarningTypeSection(warningType, grouped[warningType])
	}
}

// printWarningTypeSection prints warnings for a specific type
func (wc *WarningCollector) printWarningTypeSection(warningType WarningType, warnings []Warning) {
	if len(warnings) == 0 {
		return
	}

	sectionTitle := wc.getWarningTypeTitle(warningType)
	ColorWarning.Printf("\n%s (%d):\n", sectionTitle, len(warnings))

	// Group similar warnings to avoid repetition
	contextCounts := make(map[string]int)
	for _, warning := range warnings {
		contextCounts[warning.Context]++
	}

	var contexts []string
	for context := range contextCounts {
		contexts = append(contexts, context)
	}
	sort.Strings(contexts)

	for _, context := range contexts {
		count := contextCounts[context]
		if count > 1 {
			ColorWarning.Printf("  • %s (×%d)\n", context, count)
		} else {
			ColorWarning.Printf("  • %s\n", context)
		}
	}
}

// getWarningTypeTitle returns a human-readable title for a warning type
func (wc *WarningCollector) getWarningTypeTitle(warningType WarningType) string {
	switch warningType {
	case SourceLookupWarning:
		return "Source Lookup Failures"
	case CoverArtFetchWarning:
		return "Cover Art Download Failures"
	case TagWriteWarning:
		return "Tag Write Failures"
	case NoImageWarning:
		return "Resolved Without Image"
	default:
		return "Other Warnings"
	}
}
