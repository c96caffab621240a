package models

import "time"

// Appliance описывает устройство, возвращаемое облачным API Nature Remo.
// Интересны только устройства с вложенной записью умного счётчика.
type Appliance struct {
	// ID содержит идентификатор устройства.
	ID string `json:"id"`

	// Nickname содержит отображаемое имя устройства.
	Nickname string `json:"nickname"`

	// SmartMeter присутствует только у устройств-счётчиков.
	SmartMeter *SmartMeter `json:"smart_meter,omitempty"`
}

// SmartMeter содержит показания счётчика в виде свойств ECHONET Lite.
type SmartMeter struct {
	// EchonetLiteProperties равен nil, если API не вернул список свойств.
	EchonetLiteProperties []EchonetLiteProperty `json:"echonetlite_properties,omitempty"`
}

// EchonetLiteProperty представляет одно показание счётчика.
// Значение приходит строкой и интерпретируется в зависимости от EPC.
type EchonetLiteProperty struct {
	Name      string    `json:"name"`
	EPC       uint8     `json:"epc"`
	Val       string    `json:"val"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Labels возвращает пару меток (имя, идентификатор) для метрик устройства.
func (a Appliance) Labels() Labels {
	return Labels{Name: a.Nickname, ID: a.ID}
}

// Properties возвращает показания счётчика и признак их наличия.
func (a Appliance) Properties() ([]EchonetLiteProperty, bool) {
	if a.SmartMeter == nil || a.SmartMeter.EchonetLiteProperties == nil {
		return nil, false
	}
	return a.SmartMeter.EchonetLiteProperties, true
}
