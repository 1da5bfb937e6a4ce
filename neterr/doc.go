// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package neterr classifies request failures into network error codes.

Function Categorize maps any error returned by an execution adapter to
a Code, looking through wrapped causes. Error pairs a Code with the
original cause and formats itself the way callers of the request engine
expect to see system errors, for example:

	System error: net::ERR_CONNECTION_REFUSED(-102)
*/
package neterr
