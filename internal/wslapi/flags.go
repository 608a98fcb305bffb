package wslapi

import (
	"fmt"
	"strings"
)

// DistributionFlags is the WSL_DISTRIBUTION_FLAGS bit set.
type DistributionFlags uint32

const (
	FlagNone                DistributionFlags = 0x0
	FlagEnableInterop       DistributionFlags = 0x1
	FlagAppendNTPath        DistributionFlags = 0x2
	FlagEnableDriveMounting DistributionFlags = 0x4
	// FlagWSL2 is reported by WslGetDistributionConfiguration for version 2
	// distributions. It cannot be set through WslConfigureDistribution.
	FlagWSL2 DistributionFlags = 0x8

	// FlagsConfigurable is the set WslConfigureDistribution accepts.
	FlagsConfigurable = FlagEnableInterop | FlagAppendNTPath | FlagEnableDriveMounting
)

var flagNames = []struct {
	flag DistributionFlags
	name string
}{
	{FlagEnableInterop, "EnableInterop"},
	{FlagAppendNTPath, "AppendNTPath"},
	{FlagEnableDriveMounting, "EnableDriveMounting"},
	{FlagWSL2, "WSL2"},
}

// Has reports whether every bit of f is set in d.
func (d DistributionFlags) Has(f DistributionFlags) bool {
	return d&f == f
}

// With returns d with the bits of f set.
func (d DistributionFlags) With(f DistributionFlags) DistributionFlags {
	return d | f
}

// Without returns d with the bits of f cleared.
func (d DistributionFlags) Without(f DistributionFlags) DistributionFlags {
	return d &^ f
}

// Set returns d with f set when enable is true and cleared otherwise.
func (d DistributionFlags) Set(f DistributionFlags, enable bool) DistributionFlags {
	if enable {
		return d.With(f)
	}
	return d.Without(f)
}

// String renders the set as "EnableInterop|AppendNTPath". Unknown bits are
// shown in hex.
func (d DistributionFlags) String() string {
	if d == FlagNone {
		return "None"
	}
	var parts []string
	rest := d
	for _, fn := range flagNames {
		if d.Has(fn.flag) {
			parts = append(parts, fn.name)
			rest = rest.Without(fn.flag)
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}
