package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Clamp(t *testing.T) {
	cases := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"sin valores", PageRequest{}, PageRequest{Limit: DefaultPageLimit}},
		{"dentro de rango", PageRequest{Limit: 50, Offset: 10}, PageRequest{Limit: 50, Offset: 10}},
		{"limit excedido", PageRequest{Limit: 500}, PageRequest{Limit: MaxPageLimit}},
		{"negativos", PageRequest{Limit: -3, Offset: -1}, PageRequest{Limit: DefaultPageLimit}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Clamp()
			assert.Equal(t, tc.want, got)
			assert.Equal(t, PageResponse{Limit: got.Limit, Offset: got.Offset}, got.Response())
		})
	}
}
