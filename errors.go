package ihkb

import (
	"fmt"

	"github.com/brutella/hap"
	"github.com/brutella/hap/log"
)

// UnrecognizedModeError is a mode (or HomeKit target) we can't map without guessing what the user wants
type UnrecognizedModeError struct {
	Mode string
}

func (e *UnrecognizedModeError) Error() string {
	return fmt.Sprintf("invalid HeatingCoolingState %s", e.Mode)
}

// hapStatus logs err and turns it into what HomeKit expects: any failure talking to (or understanding)
// Infinitive is a communication failure
func hapStatus(what string, err error) int {
	if err == nil {
		return hap.JsonStatusSuccess
	}
	log.Info.Printf("%s: %s", what, err.Error())
	return hap.JsonStatusServiceCommunicationFailure
}
