package services

import (
	"testing"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/testutil"
)

func TestPositiveAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		code string
	}{
		{in: "150", want: "150"},
		{in: "10.004", want: "10"},
		{in: "0.005", want: "0.01"},
		{in: "0.004", code: "INVALID_INPUT"},
		{in: "0", code: "INVALID_INPUT"},
		{in: "-1", code: "INVALID_INPUT"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := positiveAmount(testutil.Dec(tc.in))
			if tc.code != "" {
				testutil.AssertAppError(t, err, tc.code)
				return
			}
			testutil.AssertNoError(t, err)
			testutil.AssertDecimal(t, "amount", got, tc.want)
		})
	}
}
