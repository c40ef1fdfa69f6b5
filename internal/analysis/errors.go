package analysis

import "errors"

// ErrEmptyDataset indicates no rows are left to aggregate.
var ErrEmptyDataset = errors.New("empty dataset: no rows remain after cleaning")
