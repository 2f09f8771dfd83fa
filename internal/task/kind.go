// Package task turns one input file into one rendered image. Each Kind has
// its own processing chain behind the common Task interface.
package task

import (
	"fmt"
	"strings"

	"github.com/meteovis/meteovis/internal/domain"
)

// Kind selects a processing chain.
type Kind string

const (
	// KindPolarVolume renders one sweep of a polar volume.
	KindPolarVolume Kind = "polar-volume"

	// KindScanIntegration renders a gridded composite product.
	KindScanIntegration Kind = "scan-integration"
)

var kindLabels = map[Kind]string{
	KindPolarVolume:     "Radar polar volume (2D)",
	KindScanIntegration: "Radar scan integration (2D)",
}

// Kinds returns every supported kind in menu order.
func Kinds() []Kind {
	return []Kind{KindPolarVolume, KindScanIntegration}
}

// Label returns the human-readable name shown in menus and profiles.
func (k Kind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

// ParseKind accepts a kind tag or its label. An empty string means no task
// was chosen.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: no task chosen", domain.ErrConfiguration)
	}
	for _, k := range Kinds() {
		if strings.EqualFold(s, string(k)) || strings.EqualFold(s, k.Label()) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown task %q", domain.ErrConfiguration, s)
}
