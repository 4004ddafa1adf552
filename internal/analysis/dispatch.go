// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"strings"

	"golang.org/x/sys/cpu"
)

// Backend selects the kernel an Engine runs on.
type Backend int

const (
	BackendAuto Backend = iota
	BackendScalar
	BackendVector
)

func (b Backend) String() string {
	switch b {
	case BackendScalar:
		return "scalar"
	case BackendVector:
		return "vector"
	}
	return "auto"
}

// ParseBackend converts "auto", "scalar" or "vector" to a Backend.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return BackendAuto, nil
	case "scalar", "generic":
		return BackendScalar, nil
	case "vector", "simd":
		return BackendVector, nil
	}
	return BackendAuto, fmt.Errorf("unknown analysis backend: %q", name)
}

// hasVectorUnit is probed once at startup.
var hasVectorUnit = cpu.X86.HasAVX || cpu.ARM64.HasASIMD

var (
	scalarEngine = &pipeline{name: "scalar", k: scalarKernel{}}
	vectorEngine = &pipeline{name: "vector", k: vectorKernel{}}
)

// NewEngine returns the engine for b. BackendAuto picks the vector engine
// when the CPU has 256-bit (amd64) or 128-bit (arm64) float vectors.
func NewEngine(b Backend) Engine {
	switch b {
	case BackendScalar:
		return scalarEngine
	case BackendVector:
		return vectorEngine
	}
	if hasVectorUnit {
		return vectorEngine
	}
	return scalarEngine
}
