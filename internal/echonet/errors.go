package echonet

import "fmt"

// ParseError возвращается, если значение свойства не является числом нужного вида.
type ParseError struct {
	EPC uint8
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse EPC 0x%02X value %q: %v", e.EPC, e.Raw, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnknownUnitError возвращается для кода единицы, отсутствующего в таблице множителей.
type UnknownUnitError struct {
	Raw string
}

func (e *UnknownUnitError) Error() string {
	return "unknown cumulative electric energy unit: " + e.Raw
}
