package enums

import (
	"fmt"
	"strings"
)

// PackageSize is the parcel size class that drives pricing.
type PackageSize string

const (
	PackageSizeSmall  PackageSize = "S"
	PackageSizeMedium PackageSize = "M"
	PackageSizeLarge  PackageSize = "L"
)

var validPackageSizes = []PackageSize{
	PackageSizeSmall,
	PackageSizeMedium,
	PackageSizeLarge,
}

// String implements fmt.Stringer.
func (p PackageSize) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PackageSize.
func (p PackageSize) IsValid() bool {
	for _, candidate := range validPackageSizes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePackageSize accepts S, M or L in any case.
func ParsePackageSize(value string) (PackageSize, error) {
	normalized := PackageSize(strings.ToUpper(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid package size %q", value)
}
