package validators

import (
	"fmt"
	"strings"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/just-nibble/service-miner/pkg/errcodes"
)

const maxBinDays = 3650

// Repo is an "owner/name" reference.
type Repo string

func (r Repo) Validate() error {
	_, _, err := entities.ParseFullName(string(r))
	return err
}

func (r Repo) Split() (owner, name string) {
	owner, name, _ = entities.ParseFullName(string(r))
	return owner, name
}

// BinDays is the approximate width of a time bin.
type BinDays int

func (b BinDays) Validate() error {
	if b <= 0 || b > maxBinDays {
		return fmt.Errorf("bin width must be between 1 and %d days: %w", maxBinDays, errcodes.ErrInvalidTimeBins)
	}
	return nil
}

// ServiceNames is a comma separated list.
type ServiceNames string

func (s ServiceNames) List() []string {
	var out []string
	for _, n := range strings.Split(string(s), ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func (s ServiceNames) Validate() error {
	if len(s.List()) == 0 {
		return fmt.Errorf("at least one service name is required")
	}
	return nil
}
