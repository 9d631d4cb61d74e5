package prompt

import (
	"github.com/manifoldco/promptui"
)

// SelectString prompts the user to select from a list of strings, such as
// the "mock"/"real" hardware mode offered by `skytrack-controller init`.
func SelectString(label string, items []string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
	}

	_, result, err := prompt.Run()
	return result, wrapError(err)
}
