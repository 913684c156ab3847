package utils_test

import (
	"testing"

	"github.com/courtside/pickleball-league/utils"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPasswordHashing(t *testing.T) {
	Convey("Given a hashed password", t, func() {
		hash, err := utils.HashPassword("dink-responsibly")
		So(err, ShouldBeNil)
		So(hash, ShouldNotEqual, "dink-responsibly")

		Convey("Then the original password verifies", func() {
			So(utils.CheckPasswordHash("dink-responsibly", hash), ShouldBeTrue)
		})

		Convey("Then a wrong password does not", func() {
			So(utils.CheckPasswordHash("smash-responsibly", hash), ShouldBeFalse)
		})
	})
}

func TestIsValidEmail(t *testing.T) {
	Convey("Given the email validator", t, func() {
		valid := []string{"player@example.com", "first.last+tag@club-league.org"}
		invalid := []string{"", "player", "player@", "@example.com", "player@example"}

		for _, email := range valid {
			So(utils.IsValidEmail(email), ShouldBeTrue)
		}
		for _, email := range invalid {
			So(utils.IsValidEmail(email), ShouldBeFalse)
		}
	})
}
