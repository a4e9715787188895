package tmpl

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cents int64

func (c cents) String() string { return fmt.Sprintf("$%d.%02d", c/100, c%100) }

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		data    any
		want    string
		wantErr bool
	}{
		{
			name: "simple substitution",
			tmpl: "hello {{ .Name }}",
			data: map[string]string{"Name": "world"},
			want: "hello world",
		},
		{
			name: "struct data",
			tmpl: "{{ .Name }} x{{ .Quantity }}",
			data: struct {
				Name     string
				Quantity int
			}{Name: "Mouse", Quantity: 2},
			want: "Mouse x2",
		},
		{
			name: "no variables",
			tmpl: "static string",
			data: nil,
			want: "static string",
		},
		{
			name:    "missing key errors",
			tmpl:    "{{ .Missing }}",
			data:    map[string]string{"Name": "test"},
			wantErr: true,
		},
		{
			name:    "invalid template syntax",
			tmpl:    "{{ .Name }",
			data:    map[string]string{"Name": "test"},
			wantErr: true,
		},
		{
			name: "money with stringer",
			tmpl: "{{ .Price | money }}",
			data: map[string]any{"Price": cents(150)},
			want: "$1.50",
		},
		{
			name: "money with float",
			tmpl: "{{ .Price | money }}",
			data: map[string]any{"Price": 29.99},
			want: "$29.99",
		},
		{
			name:    "money with unsupported type",
			tmpl:    "{{ .Price | money }}",
			data:    map[string]any{"Price": "cheap"},
			wantErr: true,
		},
		{
			name: "truncate long name",
			tmpl: "{{ .Name | truncate 8 }}",
			data: map[string]string{"Name": "Amazon Echo Dot"},
			want: "Amazon …",
		},
		{
			name: "truncate short name is unchanged",
			tmpl: "{{ .Name | truncate 8 }}",
			data: map[string]string{"Name": "Echo"},
			want: "Echo",
		},
		{
			name: "pad",
			tmpl: "[{{ .Name | pad 6 }}]",
			data: map[string]string{"Name": "PS4"},
			want: "[PS4   ]",
		},
		{
			name: "upper",
			tmpl: "{{ .Name | upper }}",
			data: map[string]string{"Name": "canon"},
			want: "CANON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tmpl, tt.data)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
