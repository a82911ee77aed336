package creeper

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCreeperSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Creeper Locomotion Suite")
}
