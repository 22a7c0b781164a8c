package msa_test

import (
	"fmt"

	"github.com/phylomovie/phylomovie/pkg/msa"
)

func ExampleMapper_WindowFor() {
	// Trees inferred from 100-column windows sliding by 50 columns over
	// a 300-column alignment.
	m := msa.NewMapper(100, 50, 300, nil)

	for k := 0; k < 3; k++ {
		w := m.WindowFor(k)
		fmt.Printf("anchor %d: columns %d-%d (mid %d)\n", k, w.Start, w.End, w.Mid)
	}
	// Output:
	// anchor 0: columns 1-100 (mid 50)
	// anchor 1: columns 51-150 (mid 100)
	// anchor 2: columns 101-200 (mid 150)
}

func ExampleMapper_WindowFor_clamped() {
	// A window past the alignment end is pushed back inside it rather
	// than truncated.
	m := msa.NewMapper(100, 50, 300, nil)

	w := m.WindowFor(5)
	fmt.Printf("columns %d-%d\n", w.Start, w.End)
	// Output:
	// columns 201-300
}
