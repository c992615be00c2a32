// Copyright (c) MediaFlow Authors.
// Licensed under the MIT License.

// Package grid derives deterministic, named output slots for node results
// laid out in a fixed-width grid.
//
// Generation nodes return a variable number of media items per execution;
// the host workflow engine exposes each item on its own output port. The
// allocator maps item index i to (row, column) = (i/columns, i%columns)
// and to the stable port name "{prefix}_{row+1}_{column+1}". Because the
// mapping depends only on the index and the column width, adding or
// removing trailing items never renames earlier slots, so downstream
// connections stay valid as result counts change between runs.
package grid
