// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"

	"github.com/tfctl/ncdiff/internal/aggr"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

func OutputValidator(value any) error {
	var validOutputFlagValues = []string{"text", "json", "yaml"}
	for _, v := range validOutputFlagValues {
		if v == value {
			return nil
		}
	}
	return fmt.Errorf("must be one of %v", validOutputFlagValues)
}

func AggrValidator(value any) error {
	s, _ := value.(string)
	_, err := aggr.ParseMode(s)
	return err
}

func DepthValidator(value any) error {
	if d, ok := value.(int); ok && d < 0 {
		return fmt.Errorf("must not be negative, got %d", d)
	}
	return nil
}
