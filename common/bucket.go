package common

/*

You might be thinking: I know, I'll keep one shared pool of buckets that
every operation can use! The problem is that whoever calls a bucket's
Close() method (and somebody should, _somewhere_) breaks it for everyone
else still holding an instance. Deposition runs are short-lived, so open
buckets as one-offs, as needed, and close them in the same place.

*/
