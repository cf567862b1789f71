/*
Package cave defines the common interfaces that tie together the
custody, vault and tunnel extensions, as well as implementations of
some of the simpler components.

Context is passed through the decorator and handler stack. It carries
the block header, block time, chain id and logger. For every value T
stored in the Context there is a pair of functions:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)

WithXYZ panics if the value was previously set so that lower level
code cannot overwrite it.
*/
package cave
