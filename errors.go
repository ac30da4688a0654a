/*
Copyright © 2018 the geoframe authors.
This file is part of geoframe.

geoframe is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

geoframe is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with geoframe.  If not, see <http://www.gnu.org/licenses/>.
*/

package geoframe

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is wrapped by every error caused by invalid arguments.
var ErrInvalidInput = errors.New("geoframe: invalid input")

func inputErrorf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, a...))
}
