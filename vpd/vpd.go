// Package vpd provides the single parser entry point (C10): detect a
// blob's format and dispatch to the IPZ or Keyword parser, returning a
// tagged union instead of requiring callers to do their own dispatch.
package vpd

import (
	"fmt"

	"github.com/openbmc-ds/vpdkit/detect"
	"github.com/openbmc-ds/vpdkit/ipz"
	"github.com/openbmc-ds/vpdkit/kwvpd"
)

// Content is a tagged union of the two VPD formats a blob may hold.
// Exactly one of IPZ/Keyword is populated, selected by Kind.
type Content struct {
	Kind    detect.Kind
	IPZ     *ipz.Store
	Keyword *kwvpd.Map

	// Warnings carries non-fatal conditions surfaced during parse (e.g.
	// duplicate keywords in a Keyword-format blob) without aborting it.
	Warnings []error
}

// Parse classifies buf via detect.Detect and runs the matching parser,
// propagating the first error encountered from either stage.
func Parse(buf []byte) (Content, error) {
	kind, err := detect.Detect(buf)
	if err != nil {
		return Content{}, fmt.Errorf("vpd: %w", err)
	}

	switch kind {
	case detect.Ipz:
		store, err := ipz.Parse(buf)
		if err != nil {
			return Content{}, fmt.Errorf("vpd: %w", err)
		}
		return Content{Kind: detect.Ipz, IPZ: store}, nil

	case detect.Keyword:
		m, warnings, err := kwvpd.Parse(buf)
		if err != nil {
			return Content{}, fmt.Errorf("vpd: %w", err)
		}
		return Content{Kind: detect.Keyword, Keyword: m, Warnings: warnings}, nil

	default:
		return Content{Kind: detect.Invalid}, fmt.Errorf("vpd: unrecognized format")
	}
}
