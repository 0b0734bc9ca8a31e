// Command logomatch resolves logo file names to entries of a school catalog,
// keeps the operator's choices, and copies each logo to a file named after the
// chosen school.
//
// Typical flow:
//
//	logomatch sources            # what is waiting
//	logomatch resolve            # pick schools for each logo
//	logomatch selections fix     # re-key choices after the listing changed
//	logomatch execute --reset    # write renamed copies
package main
