package lead_test

import (
	"fmt"

	"github.com/cwbudde/algo-ecg/ecg/lead"
	"github.com/cwbudde/algo-ecg/internal/testutil"
)

func ExampleNew() {
	signal := testutil.SpikeTrain(200, 4, 1, 1000, 5)

	l, err := lead.New(0, signal, 200, "uV")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(l.RRIntervals(), l.BPM())
	// Output: [101 200 200 200] 8
}

func ExampleRefine() {
	fmt.Println(lead.Refine([]int{100, 300}, []int{104, 220}, 10))
	// Output: [220 300]
}
