package traject_test

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/traject"
)

// ExampleInfer demonstrates the full pipeline on a V of three clusters:
// the junction cluster A at the bottom, arms B and C climbing away from it.
// With A forced as the start cluster, two lineages come out, one per arm.
func ExampleInfer() {
	// 1. Lay out the embedding: three blobs of five points each.
	var points [][]float64
	var labels []string
	blob := func(cx, cy float64, label string) {
		for k := 0; k < 5; k++ {
			off := 0.2 * float64(k-2)
			points = append(points, []float64{cx + off, cy + off})
			labels = append(labels, label)
		}
	}
	blob(0, 0, "A")
	blob(-3, 3, "B")
	blob(3, 3, "C")

	// 2. Infer the trajectory, rooting every lineage at cluster A.
	traj, err := traject.Infer(points, labels, traject.WithStartClusters("A"))
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	// 3. Print the lineages as root-to-leaf cluster paths.
	for _, lin := range traj.Lineages() {
		fmt.Println(strings.Join(lin, " -> "))
	}
	// Output:
	// A -> B
	// A -> C
}
