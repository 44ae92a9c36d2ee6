package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"luckyman-server/internal/jwt"
)

var identity = flag.String("identity", "", "the seat identity to sign a token for")

// signs a bearer token for local play; production identities come from the account service
func main() {
	flag.Parse()

	if *identity == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := jwt.LoadKeys(); err != nil {
		logrus.WithError(err).Fatal("could not load keys")
	}

	signed, err := jwt.Sign(*identity)
	if err != nil {
		logrus.WithError(err).Fatal("could not sign token")
	}

	fmt.Println(signed)
}
