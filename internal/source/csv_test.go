package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theirongolddev/fincast/internal/model"
)

func TestParseCSV_EnglishHeaders(t *testing.T) {
	in := "period,flow_type,category,amount,note\n" +
		"2024-01,revenue,sales,1000.50,January invoices\n" +
		"2024-01,cost,rent,400,\n"

	records, skipped, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, records, 2)

	assert.Equal(t, "2024-01", records[0].Period)
	assert.Equal(t, model.Revenue, records[0].FlowType)
	assert.Equal(t, "1000.5", records[0].Amount.String())
	assert.Equal(t, "January invoices", records[0].Note)
	assert.Equal(t, model.Cost, records[1].FlowType)
	assert.Empty(t, records[1].Note)
}

func TestParseCSV_LegacyHeaders(t *testing.T) {
	in := "competencia,tipo,categoria,valor,descricao\n" +
		"2024-02,receita,vendas,1100,\n" +
		"2024-02,custo,aluguel,450,escritorio\n"

	records, _, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.Revenue, records[0].FlowType)
	assert.Equal(t, "vendas", records[0].Category)
	assert.Equal(t, "escritorio", records[1].Note)
}

func TestParseCSV_SkipsIncompleteRows(t *testing.T) {
	in := "period,flow_type,category,amount\n" +
		"2024-01,revenue,sales,10\n" +
		"2024-01,revenue,,10\n" +
		",cost,rent,5\n" +
		"2024-01,cost\n"

	records, skipped, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 3, skipped)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
		wantMsg string
	}{
		{"empty", "", ErrInvalidFile, "empty"},
		{"missing columns", "period,amount\n2024-01,10\n", ErrInvalidFile, "flow_type, category"},
		{"header only", "period,flow_type,category,amount\n", ErrInvalidFile, "no data rows"},
		{"zero amount", "period,flow_type,category,amount\n2024-01,revenue,a,1\n2024-01,revenue,a,0\n", model.ErrInvalidRecord, "line 3"},
		{"bad period", "period,flow_type,category,amount\n2024-13,revenue,a,1\n", model.ErrInvalidRecord, "line 2"},
		{"bad flow", "period,flow_type,category,amount\n2024-01,transfer,a,1\n", model.ErrInvalidRecord, "line 2"},
		{"bad amount", "period,flow_type,category,amount\n2024-01,cost,a,abc\n", model.ErrInvalidRecord, "line 2"},
		{"broken quote", "period,flow_type,category,amount\n2024-01,revenue,\"bad\"x,100\n", ErrInvalidFile, "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseCSV(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
