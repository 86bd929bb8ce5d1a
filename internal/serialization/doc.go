// Package serialization stores trained networks in the .dnet model format.
//
// A .dnet file is a fixed 64-byte header, a JSON header, and raw float64
// tensor data:
//
//	Format Structure (little-endian):
//	  0x00 [4 bytes:  Magic "DNET"]
//	  0x04 [4 bytes:  Version (uint32)]
//	  0x08 [4 bytes:  Flags (uint32)]
//	  0x0C [4 bytes:  Reserved]
//	  0x10 [8 bytes:  JSON header size (uint64)]
//	  0x18 [8 bytes:  Data size (uint64)]
//	  0x20 [32 bytes: SHA-256 of the data section]
//	  0x40 [JSON header, zero-padded to a 64-byte boundary]
//	       [Tensor data: float64 values in header order]
//
// Tensors are named layers.<i>.weight and layers.<i>.bias, followed by the
// optional input and output scaler vectors. Reading verifies the checksum,
// the tensor table, and every tensor shape against the stored architecture
// before a network is rebuilt, so a file either loads exactly as written or
// not at all.
//
// Example usage:
//
//	path, err := serialization.ModelPath("models", "xor")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := serialization.Save(path, &serialization.Model{Network: net}); err != nil {
//	    log.Fatal(err)
//	}
//
//	m, err := serialization.Load(path, serialization.Expectation{InputSize: 2})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := m.Network.Predict([]float64{1, 0})
package serialization
