package transform_test

import (
	"fmt"

	"github.com/cwbudde/algo-ecg/ecg/transform"
)

func ExampleCorrelateSame() {
	out, _ := transform.CorrelateSame([]float64{1, 2, 3, 4, 5}, []float64{1, 1, 1})
	fmt.Println(out)
	// Output:
	// [3 6 9 12 9]
}

func ExampleWindowLength() {
	fmt.Println(transform.WindowLength(200), transform.WindowLength(250))
	// Output:
	// 40 50
}
