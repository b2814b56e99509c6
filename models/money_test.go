package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCents_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   Cents
		want string
	}{
		{name: "zero", in: 0, want: "0.00"},
		{name: "whole units", in: 1200, want: "12.00"},
		{name: "cents only", in: 7, want: "0.07"},
		{name: "negative", in: -1250, want: "-12.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestCents_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Cents
		wantErr bool
	}{
		{name: "two decimals", in: `12.50`, want: 1250},
		{name: "one decimal", in: `12.5`, want: 1250},
		{name: "no decimals", in: `12`, want: 1200},
		{name: "quoted", in: `"3.99"`, want: 399},
		{name: "negative", in: `-0.07`, want: -7},
		{name: "sub-cent precision rejected", in: `1.005`, wantErr: true},
		{name: "garbage rejected", in: `"1,00"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Cents
			err := json.Unmarshal([]byte(tt.in), &got)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
