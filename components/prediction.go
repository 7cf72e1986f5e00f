package components

import (
	"github.com/automoto/elfwalk-mp/network"
	"github.com/yohamta/donburi"
)

// PredictionData holds the predictor of the locally controlled entity.
type PredictionData struct {
	Predictor *network.Predictor
}

var Prediction = donburi.NewComponentType[PredictionData]()
