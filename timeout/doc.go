// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines policies for bounding how long a single
// request may run before it is cancelled. A generic interface for
// timeout policies is provided, Policy, along with several useful
// policy generating functions and built-in policies, and Enforce, which
// arms a policy against anything that can be cancelled.
package timeout
