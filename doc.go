package deposit

// This package defines common methods and operations for preparing cryo-EM deposition (EMDB/PDB submission) packages and for importing externally computed CTF estimates into a project. Common operations include: exporting maps, masks, FSC curves and atomic structures, and associating per-tool CTF files with micrographs.
