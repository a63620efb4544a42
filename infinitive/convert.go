package infinitive

// ToCelsius converts a Fahrenheit reading, no rounding
func ToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// ToFahrenheit converts a Celsius value, no rounding
func ToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}
