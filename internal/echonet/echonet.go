// Package echonet переводит свойства ECHONET Lite умного счётчика в записи
// серий метрик. Все строковые значения API разбираются здесь, остальная
// часть приложения работает уже с типизированными числами.
package echonet

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/levinOo/remo-exporter/internal/models"
)

// Коды свойств (EPC) низковольтного умного счётчика.
const (
	EPCCoefficient                      uint8 = 0xD3
	EPCEffectiveDigits                  uint8 = 0xD7
	EPCNormalDirectionCumulativeEnergy  uint8 = 0xE0
	EPCCumulativeEnergyUnit             uint8 = 0xE1
	EPCReverseDirectionCumulativeEnergy uint8 = 0xE3
	EPCMeasuredInstantaneous            uint8 = 0xE7
)

// Property описывает, в какую серию и как записывается свойство.
type Property struct {
	EPC   uint8
	Name  string
	Help  string
	Kind  models.Kind
	parse func(raw string) (float64, error)
}

var table = map[uint8]Property{
	EPCMeasuredInstantaneous: {
		Name:  "remo_measured_instantaneous",
		Help:  "Measured instantaneous usage in W (echonet lite property, smart meter EPC=0xE7)",
		Kind:  models.Gauge,
		parse: parseFloat,
	},
	EPCCoefficient: {
		Name:  "remo_coefficient",
		Help:  "Coefficient for remo_*_cumulative_electric_energy metrics (echonet lite property, smart meter EPC=0xD3)",
		Kind:  models.Gauge,
		parse: parseFloat,
	},
	EPCEffectiveDigits: {
		Name:  "remo_cumulative_electric_energy_effective_digits",
		Help:  "Number of effective digits for remo_*_cumulative_electric_energy metrics (echonet lite property, smart meter EPC=0xD7)",
		Kind:  models.Gauge,
		parse: parseFloat,
	},
	EPCCumulativeEnergyUnit: {
		Name:  "remo_cumulative_electric_energy_unit",
		Help:  "Unit in kWh for remo_*_cumulative_electric_energy metrics (echonet lite property, smart meter EPC=0xE1)",
		Kind:  models.Gauge,
		parse: parseUnit,
	},
	EPCNormalDirectionCumulativeEnergy: {
		Name:  "remo_normal_direction_cumulative_electric_energy",
		Help:  "Raw value for cumulative electric energy usage in positive direction (echonet lite property, smart meter EPC=0xE0)",
		Kind:  models.Counter,
		parse: parseFloat,
	},
	EPCReverseDirectionCumulativeEnergy: {
		Name:  "remo_reverse_direction_cumulative_electric_energy",
		Help:  "Raw value for cumulative electric energy usage in reverse direction (echonet lite property, smart meter EPC=0xE3)",
		Kind:  models.Counter,
		parse: parseFloat,
	},
}

// unitMultipliers переводит код единицы (EPC=0xE1) в множитель кВт·ч.
var unitMultipliers = map[uint8]float64{
	0x00: 1.0,
	0x01: 0.1,
	0x02: 0.01,
	0x03: 0.001,
	0x04: 0.0001,
	0x0A: 10.0,
	0x0B: 100.0,
	0x0C: 1000.0,
	0x0D: 10000.0,
}

// Lookup возвращает описание свойства по коду.
func Lookup(epc uint8) (Property, bool) {
	p, ok := table[epc]
	if ok {
		p.EPC = epc
	}
	return p, ok
}

// Descriptors возвращает все известные свойства, упорядоченные по EPC.
func Descriptors() []Property {
	list := make([]Property, 0, len(table))
	for epc := range table {
		p, _ := Lookup(epc)
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].EPC < list[j].EPC })
	return list
}

// Definer объявляет серии в хранилище.
type Definer interface {
	Define(name, help string, kind models.Kind) error
}

// DefineSeries объявляет в хранилище все серии из таблицы свойств.
func DefineSeries(d Definer) error {
	for _, p := range Descriptors() {
		if err := d.Define(p.Name, p.Help, p.Kind); err != nil {
			return fmt.Errorf("failed to define %s: %w", p.Name, err)
		}
	}
	return nil
}

// Writer принимает записи серий.
type Writer interface {
	SetGauge(name string, labels models.Labels, value float64) error
	ResetAndAdd(name string, labels models.Labels, value float64) error
}

// Write описывает одно изменение хранилища.
type Write struct {
	Name   string
	Kind   models.Kind
	Labels models.Labels
	Value  float64
}

// Apply применяет запись к хранилищу. Для счётчиков используется сброс
// с последующим приращением: показание счётчика абсолютное, а не дельта.
func (w Write) Apply(s Writer) error {
	switch w.Kind {
	case models.Gauge:
		return s.SetGauge(w.Name, w.Labels, w.Value)
	case models.Counter:
		return s.ResetAndAdd(w.Name, w.Labels, w.Value)
	default:
		return fmt.Errorf("unknown metric kind %q for %s", w.Kind, w.Name)
	}
}

// Decode разбирает одно свойство. Для неизвестного кода возвращает nil без ошибки.
func Decode(epc uint8, raw string, labels models.Labels) (*Write, error) {
	p, ok := Lookup(epc)
	if !ok {
		return nil, nil
	}

	value, err := p.parse(raw)
	if err != nil {
		var unitErr *UnknownUnitError
		if errors.As(err, &unitErr) {
			return nil, err
		}
		return nil, &ParseError{EPC: epc, Raw: raw, Err: err}
	}

	return &Write{
		Name:   p.Name,
		Kind:   p.Kind,
		Labels: labels,
		Value:  value,
	}, nil
}

func parseFloat(raw string) (float64, error) {
	return strconv.ParseFloat(raw, 64)
}

// parseUnit принимает десятичный код единицы с необязательным ведущим "+".
func parseUnit(raw string) (float64, error) {
	code, err := strconv.ParseUint(strings.TrimPrefix(raw, "+"), 10, 8)
	if err != nil {
		return 0, err
	}
	unit, ok := unitMultipliers[uint8(code)]
	if !ok {
		return 0, &UnknownUnitError{Raw: raw}
	}
	return unit, nil
}
