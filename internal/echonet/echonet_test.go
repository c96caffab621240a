package echonet

import (
	"errors"
	"testing"

	"github.com/levinOo/remo-exporter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var meter = models.Labels{Name: "Smart Meter", ID: "dev-1"}

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		epc       uint8
		raw       string
		wantName  string
		wantKind  models.Kind
		wantValue float64
	}{
		{
			name:      "instantaneous",
			epc:       EPCMeasuredInstantaneous,
			raw:       "512",
			wantName:  "remo_measured_instantaneous",
			wantKind:  models.Gauge,
			wantValue: 512,
		},
		{
			name:      "negative instantaneous",
			epc:       EPCMeasuredInstantaneous,
			raw:       "-120",
			wantName:  "remo_measured_instantaneous",
			wantKind:  models.Gauge,
			wantValue: -120,
		},
		{
			name:      "coefficient",
			epc:       EPCCoefficient,
			raw:       "1",
			wantName:  "remo_coefficient",
			wantKind:  models.Gauge,
			wantValue: 1,
		},
		{
			name:      "effective digits",
			epc:       EPCEffectiveDigits,
			raw:       "6",
			wantName:  "remo_cumulative_electric_energy_effective_digits",
			wantKind:  models.Gauge,
			wantValue: 6,
		},
		{
			name:      "unit 0.01 kWh",
			epc:       EPCCumulativeEnergyUnit,
			raw:       "2",
			wantName:  "remo_cumulative_electric_energy_unit",
			wantKind:  models.Gauge,
			wantValue: 0.01,
		},
		{
			name:      "unit with leading plus",
			epc:       EPCCumulativeEnergyUnit,
			raw:       "+2",
			wantName:  "remo_cumulative_electric_energy_unit",
			wantKind:  models.Gauge,
			wantValue: 0.01,
		},
		{
			name:      "unit 1000 kWh",
			epc:       EPCCumulativeEnergyUnit,
			raw:       "12",
			wantName:  "remo_cumulative_electric_energy_unit",
			wantKind:  models.Gauge,
			wantValue: 1000,
		},
		{
			name:      "normal direction",
			epc:       EPCNormalDirectionCumulativeEnergy,
			raw:       "123456",
			wantName:  "remo_normal_direction_cumulative_electric_energy",
			wantKind:  models.Counter,
			wantValue: 123456,
		},
		{
			name:      "reverse direction",
			epc:       EPCReverseDirectionCumulativeEnergy,
			raw:       "78.5",
			wantName:  "remo_reverse_direction_cumulative_electric_energy",
			wantKind:  models.Counter,
			wantValue: 78.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Decode(tt.epc, tt.raw, meter)
			require.NoError(t, err)
			require.NotNil(t, w)

			assert.Equal(t, tt.wantName, w.Name)
			assert.Equal(t, tt.wantKind, w.Kind)
			assert.Equal(t, meter, w.Labels)
			assert.InDelta(t, tt.wantValue, w.Value, 1e-9)
		})
	}
}

func TestDecode_UnknownEPC(t *testing.T) {
	w, err := Decode(0x80, "garbage", meter)
	assert.NoError(t, err)
	assert.Nil(t, w)
}

func TestDecode_Errors(t *testing.T) {
	t.Run("unknown unit", func(t *testing.T) {
		_, err := Decode(EPCCumulativeEnergyUnit, "5", meter)
		require.Error(t, err)

		var unitErr *UnknownUnitError
		require.True(t, errors.As(err, &unitErr))
		assert.Equal(t, "5", unitErr.Raw)
		assert.Contains(t, err.Error(), "5")
	})

	tests := []struct {
		name string
		epc  uint8
		raw  string
	}{
		{name: "non numeric gauge", epc: EPCMeasuredInstantaneous, raw: "abc"},
		{name: "empty counter", epc: EPCNormalDirectionCumulativeEnergy, raw: ""},
		{name: "unit out of byte range", epc: EPCCumulativeEnergyUnit, raw: "300"},
		{name: "fractional unit", epc: EPCCumulativeEnergyUnit, raw: "1.5"},
		{name: "double plus unit", epc: EPCCumulativeEnergyUnit, raw: "++2"},
		{name: "negative unit", epc: EPCCumulativeEnergyUnit, raw: "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.epc, tt.raw, meter)
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tt.epc, parseErr.EPC)
			assert.Equal(t, tt.raw, parseErr.Raw)
		})
	}
}

func TestDescriptors(t *testing.T) {
	list := Descriptors()
	require.Len(t, list, 6)

	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].EPC, list[i].EPC)
	}
}

type fakeStore struct {
	defined []string
	gauges  map[string]float64
	resets  map[string]float64
}

func (f *fakeStore) Define(name, help string, kind models.Kind) error {
	f.defined = append(f.defined, name)
	return nil
}

func (f *fakeStore) SetGauge(name string, labels models.Labels, value float64) error {
	f.gauges[name] = value
	return nil
}

func (f *fakeStore) ResetAndAdd(name string, labels models.Labels, value float64) error {
	f.resets[name] = value
	return nil
}

func TestWriteApply(t *testing.T) {
	store := &fakeStore{gauges: map[string]float64{}, resets: map[string]float64{}}

	require.NoError(t, Write{Name: "g", Kind: models.Gauge, Value: 1}.Apply(store))
	require.NoError(t, Write{Name: "c", Kind: models.Counter, Value: 2}.Apply(store))
	assert.Error(t, Write{Name: "x", Kind: "histogram"}.Apply(store))

	assert.Equal(t, map[string]float64{"g": 1}, store.gauges)
	assert.Equal(t, map[string]float64{"c": 2}, store.resets)
}

func TestDefineSeries(t *testing.T) {
	store := &fakeStore{}

	require.NoError(t, DefineSeries(store))
	assert.Equal(t, []string{
		"remo_coefficient",
		"remo_cumulative_electric_energy_effective_digits",
		"remo_normal_direction_cumulative_electric_energy",
		"remo_cumulative_electric_energy_unit",
		"remo_reverse_direction_cumulative_electric_energy",
		"remo_measured_instantaneous",
	}, store.defined)
}
