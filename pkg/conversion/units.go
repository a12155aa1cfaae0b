// Package conversion maps ECS/Fargate task and service definitions onto
// Kubernetes resources.
package conversion

import "strconv"

// cpuUnitsPerCore is the number of ECS CPU units in one vCPU
const cpuUnitsPerCore = 1024

// MemoryToMi labels an ECS memory value with the Mi suffix. The number is
// carried through unchanged.
func MemoryToMi(memory int64) string {
	return strconv.FormatInt(memory, 10) + "Mi"
}

// CPUToMillicores converts ECS CPU units to millicores, truncating toward zero
func CPUToMillicores(units int64) string {
	return strconv.FormatInt(units*1000/cpuUnitsPerCore, 10) + "m"
}

// requestShare returns 80% of a limit, truncated before any unit conversion
func requestShare(limit int64) int64 {
	return limit * 4 / 5
}
