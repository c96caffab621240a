package repository_test

import (
	"fmt"
	"log"

	"github.com/levinOo/remo-exporter/internal/models"
	"github.com/levinOo/remo-exporter/internal/repository"
)

// Example_memStorageGauge демонстрирует запись gauge-серии.
func Example_memStorageGauge() {
	storage := repository.NewMemStorage()
	if err := storage.Define("remo_measured_instantaneous", "Measured instantaneous usage in W", models.Gauge); err != nil {
		log.Fatal(err)
	}

	labels := models.Labels{Name: "Smart Meter", ID: "dev-1"}
	if err := storage.SetGauge("remo_measured_instantaneous", labels, 512); err != nil {
		log.Fatal(err)
	}

	value, _ := storage.Get("remo_measured_instantaneous", labels)
	fmt.Printf("Instantaneous: %.0f W\n", value)
	// Output: Instantaneous: 512 W
}

// Example_memStorageCounter демонстрирует, что показание счётчика
// заменяет предыдущее, а не прибавляется к нему.
func Example_memStorageCounter() {
	storage := repository.NewMemStorage()
	if err := storage.Define("remo_normal_direction_cumulative_electric_energy", "Cumulative usage", models.Counter); err != nil {
		log.Fatal(err)
	}

	labels := models.Labels{Name: "Smart Meter", ID: "dev-1"}
	storage.ResetAndAdd("remo_normal_direction_cumulative_electric_energy", labels, 123.4)
	storage.ResetAndAdd("remo_normal_direction_cumulative_electric_energy", labels, 50)

	for _, s := range storage.Snapshot() {
		fmt.Printf("%s{name=%q,id=%q} %g\n", s.Name, s.Labels.Name, s.Labels.ID, s.Value)
	}
	// Output: remo_normal_direction_cumulative_electric_energy{name="Smart Meter",id="dev-1"} 50
}
