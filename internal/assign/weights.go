// Package assign translates an airport and flight schedule into the bay
// and gate assignment MILPs.
package assign

import (
	"github.com/okello/baygate/pkg/model"
)

// Weights are the objective weights of the bay assignment. Gamma scales
// every penalty above the largest possible distance objective, and beta
// puts preference terms between the two, so the soft objectives rank
// penalties > preferences > walking distance without lexicographic solving.
type Weights struct {
	Alpha float64
	Beta  float64
	Gamma float64
}

// BayWeights derives the weights from a finalized schedule. Pure: the
// schedule is not modified and repeated calls return the same record.
func BayWeights(s *model.Schedule) (Weights, error) {
	gamma := 0.0
	for i := range s.Legs {
		term, err := s.Terminal(i)
		if err != nil {
			return Weights{}, err
		}
		gamma += s.Airport.MaxDist[term] * float64(s.Passengers(i))
	}
	return Weights{Alpha: 1, Beta: 3 * gamma, Gamma: gamma}, nil
}
