// ABOUTME: Create/update forms for airports and airlines
// ABOUTME: Normalizes codes and omits blank optional fields from payloads

package tabs

import (
	"strings"

	"github.com/tsundip4/airport-ops-console/internal/client"
)

// NormalizeCode upper-cases an IATA/ICAO code as it is typed.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

type AirportForm struct {
	IATA     string
	Name     string
	ICAO     string
	Timezone string
}

// Payload trims every field; blank ones are dropped on the wire.
func (f AirportForm) Payload() client.AirportInput {
	return client.AirportInput{
		IATA:     NormalizeCode(f.IATA),
		Name:     strings.TrimSpace(f.Name),
		ICAO:     NormalizeCode(f.ICAO),
		Timezone: strings.TrimSpace(f.Timezone),
	}
}

func (f AirportForm) Code() string { return NormalizeCode(f.IATA) }

type AirlineForm struct {
	IATA string
	ICAO string
	Name string
}

func (f AirlineForm) Payload() client.AirlineInput {
	return client.AirlineInput{
		IATA: NormalizeCode(f.IATA),
		ICAO: NormalizeCode(f.ICAO),
		Name: strings.TrimSpace(f.Name),
	}
}

func (f AirlineForm) Code() string { return NormalizeCode(f.IATA) }
