package nbody

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestNBody(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "NBody Suite")
}
