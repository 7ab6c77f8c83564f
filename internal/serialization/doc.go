// Package serialization implements the ALETHEIA checkpoint format.
//
// A checkpoint bundles a model state dictionary with a JSON record that
// describes the model (configuration, training statistics, capabilities):
//
//	Format Structure:
//	  0x00 [4 bytes: Magic "ALTH"]
//	  0x04 [4 bytes: Version (uint32 LE)]
//	  0x08 [4 bytes: Flags (uint32 LE)]
//	  0x0C [4 bytes: Reserved]
//	  0x10 [8 bytes: Header size (uint64 LE)]
//	  0x18 [8 bytes: Data size (uint64 LE)]
//	  0x20 [32 bytes: SHA-256 of the tensor data]
//	  0x40 [Header: JSON metadata]
//	       [Padding to a 64-byte boundary]
//	       [Tensor data: raw little-endian float32, in header order]
//
// The header's tensor table together with the data section is the
// checkpoint's "model_state_dict"; every other checkpoint key lives in the
// header payload.
//
// Example usage:
//
//	// Save a model
//	header, err := serialization.NewHeader("AletheiaFinalModel", record)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	w, err := serialization.Create("model.ckpt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//	if err := w.Write(model.StateDict(), header); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load it back
//	r, err := serialization.Open("model.ckpt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//	stateDict, err := r.StateDict()
package serialization
