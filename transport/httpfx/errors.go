// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpfx

import "errors"

// errMissingURI is returned by RequestBuilder.Build when no URI was set.
var errMissingURI = errors.New("httpfx: request is missing a URI")
