package occupancy

// ApplyDelta aplica (in - out) sobre el total previo y recorta a cero.
// El recorte es por paso: una salida excesiva no deja saldo negativo que reaparezca
// cuando vuelvan las entradas. Por eso el resultado depende del orden del historial.
func ApplyDelta(previous, in, out int) int {
	next := previous + in - out
	if next < 0 {
		return 0
	}
	return next
}
